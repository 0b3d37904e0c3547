package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leeforge/resizer/media/processor"
)

type SaveEventType int

const (
	SaveStarted SaveEventType = iota
	SaveSucceeded
	SaveFailed
)

func (t SaveEventType) String() string {
	switch t {
	case SaveStarted:
		return "started"
	case SaveSucceeded:
		return "succeeded"
	case SaveFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events follow.
func (t SaveEventType) Terminal() bool {
	return t == SaveSucceeded || t == SaveFailed
}

// SaveEvent is one progress notification. Outcome is set on terminal events.
type SaveEvent struct {
	Type    SaveEventType
	ID      uuid.UUID
	Outcome *SaveOutcome
}

// SaveOutcome is the terminal result of a save. Err is nil on success and
// an EncodeWriteError otherwise.
type SaveOutcome struct {
	ID       uuid.UUID
	Path     string
	Format   processor.Format
	Bytes    int64
	Duration time.Duration
	Err      error
}

func (o SaveOutcome) Success() bool {
	return o.Err == nil
}

// SaveTicket tracks one queued save.
type SaveTicket struct {
	ID     uuid.UUID
	Path   string
	Format processor.Format

	events  chan SaveEvent
	done    chan struct{}
	once    sync.Once
	outcome SaveOutcome
}

func newTicket(path string, format processor.Format) *SaveTicket {
	return &SaveTicket{
		ID:     uuid.New(),
		Path:   path,
		Format: format,
		// Started plus one terminal event: the worker never blocks on a
		// slow or absent reader.
		events: make(chan SaveEvent, 2),
		done:   make(chan struct{}),
	}
}

// Events delivers SaveStarted, then exactly one of SaveSucceeded or
// SaveFailed, then is closed. It is meant for a single reader.
func (t *SaveTicket) Events() <-chan SaveEvent {
	return t.events
}

// Done is closed once the outcome is available.
func (t *SaveTicket) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the save finishes or ctx ends. When ctx ends first the
// save keeps running and the returned outcome carries ctx's error.
func (t *SaveTicket) Wait(ctx context.Context) SaveOutcome {
	select {
	case <-t.done:
		return t.outcome
	case <-ctx.Done():
		return SaveOutcome{ID: t.ID, Path: t.Path, Format: t.Format, Err: ctx.Err()}
	}
}

func (t *SaveTicket) emit(ev SaveEvent) {
	ev.ID = t.ID
	t.events <- ev
}

func (t *SaveTicket) finish(outcome SaveOutcome) {
	t.once.Do(func() {
		t.outcome = outcome

		ev := SaveEvent{Type: SaveSucceeded, Outcome: &outcome}
		if !outcome.Success() {
			ev.Type = SaveFailed
		}
		t.emit(ev)
		close(t.events)
		close(t.done)
	})
}
