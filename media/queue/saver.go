// Package queue runs saves in the background so the front end never blocks
// on encoding or disk writes.
package queue

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/leeforge/resizer/concurrency"
	"github.com/leeforge/resizer/errors"
	"github.com/leeforge/resizer/logging"
	"github.com/leeforge/resizer/media/processor"
	"github.com/leeforge/resizer/media/storage"
	"github.com/leeforge/resizer/metrics"
	"go.uber.org/zap"
)

// Snapshotter hands out an independent copy of the image to save.
// media/session.Session implements it.
type Snapshotter interface {
	Snapshot() (image.Image, error)
}

// AsyncSaver encodes and writes images on a TaskQueue. It owns no
// goroutines itself.
type AsyncSaver struct {
	queue    *concurrency.TaskQueue
	provider storage.Provider
	logger   logging.Logger
	metrics  *metrics.Collector
}

// NewAsyncSaver creates a saver. logger and collector may be nil.
func NewAsyncSaver(queue *concurrency.TaskQueue, provider storage.Provider, logger logging.Logger, collector *metrics.Collector) *AsyncSaver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AsyncSaver{
		queue:    queue,
		provider: provider,
		logger:   logger.Named("saver"),
		metrics:  collector,
	}
}

// Save validates the request and queues one encode-and-write task.
//
// NoImageError and InvalidPathError are returned here, before anything is
// queued. Everything after that is reported through the ticket. The image is
// copied now, so later edits to the source do not affect what is written.
// Callers must not start a second save for the same source while one is in
// flight.
func (s *AsyncSaver) Save(ctx context.Context, source Snapshotter, intent processor.CompressionIntent, path string) (*SaveTicket, error) {
	img, err := source.Snapshot()
	if err != nil {
		return nil, err
	}
	if err := storage.CheckOutput(path); err != nil {
		return nil, err
	}

	// Unknown formats encode as JPEG.
	format, _ := processor.ParseFormat(intent.Format.String())
	_, opts := processor.ResolveCompression(processor.CompressionIntent{Format: format, Quality: intent.Quality})

	ticket := newTicket(path, format)
	job := saveJob{
		ticket: ticket,
		img:    img,
		opts:   opts,
		// The save always runs to completion.
		ctx: context.WithoutCancel(ctx),
	}

	if err := s.queue.Submit(func() { s.run(job) }); err != nil {
		return nil, errors.NewInternal("save queue unavailable").WithInnerError(err)
	}
	return ticket, nil
}

type saveJob struct {
	ctx    context.Context
	ticket *SaveTicket
	img    image.Image
	opts   processor.EncoderOptions
}

func (s *AsyncSaver) run(job saveJob) {
	t := job.ticket
	labels := map[string]string{"format": t.Format.String()}
	logger := s.logger.With(
		logging.SaveID(t.ID.String()),
		logging.Path(t.Path),
		logging.Format(t.Format.String()))

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.metrics.IncCounter(metrics.SaveFailedTotal, labels)
			logger.Error("save panicked", zap.Any("panic", r))
			t.finish(SaveOutcome{
				ID:       t.ID,
				Path:     t.Path,
				Format:   t.Format,
				Duration: time.Since(start),
				Err:      errors.NewEncodeWrite(t.Path, fmt.Errorf("panic: %v", r)),
			})
		}
	}()

	s.metrics.IncCounter(metrics.SaveStartedTotal, labels)
	logger.Debug("save started", zap.Any("options", job.opts.Params()))
	t.emit(SaveEvent{Type: SaveStarted})

	written, err := s.write(job)

	outcome := SaveOutcome{
		ID:       t.ID,
		Path:     t.Path,
		Format:   t.Format,
		Bytes:    written,
		Duration: time.Since(start),
		Err:      err,
	}
	s.metrics.ObserveDuration(metrics.SaveDurationSeconds, start, labels)

	if err != nil {
		s.metrics.IncCounter(metrics.SaveFailedTotal, labels)
		logger.Error("save failed", zap.Error(err))
	} else {
		s.metrics.IncCounter(metrics.SaveSucceededTotal, labels)
		logger.Info("image saved", zap.Int64("bytes", written), zap.Duration("duration", outcome.Duration))
	}
	t.finish(outcome)
}

// write encodes into memory first so an encoder failure never touches the
// destination, then writes the bytes in a single call.
func (s *AsyncSaver) write(job saveJob) (int64, error) {
	t := job.ticket

	var buf bytes.Buffer
	if err := processor.Encode(&buf, job.img, t.Format, job.opts); err != nil {
		return 0, errors.NewEncodeWrite(t.Path, err).WithDetail("stage", "encode")
	}

	n, err := s.provider.Write(job.ctx, t.Path, &buf)
	if err != nil {
		return n, errors.NewEncodeWrite(t.Path, err).WithDetail("stage", "write")
	}
	return n, nil
}
