package queue

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leeforge/resizer/concurrency"
	"github.com/leeforge/resizer/errors"
	"github.com/leeforge/resizer/media/processor"
	"github.com/leeforge/resizer/media/session"
	"github.com/leeforge/resizer/media/storage"
	"github.com/leeforge/resizer/metrics"
	imgtest "github.com/leeforge/resizer/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSaver(t *testing.T, provider storage.Provider) (*AsyncSaver, *concurrency.TaskQueue, *metrics.Collector) {
	t.Helper()
	q := concurrency.NewTaskQueue(4)
	q.Start(1)
	t.Cleanup(q.Stop)

	if provider == nil {
		provider = storage.NewLocalProvider("")
	}
	collector := metrics.NewCollector()
	return NewAsyncSaver(q, provider, nil, collector), q, collector
}

func loadedSession(t *testing.T, w, h int) *session.Session {
	t.Helper()
	s := session.New()
	_, err := s.Load(imgtest.WriteImage(t, t.TempDir(), "src.png", w, h))
	require.NoError(t, err)
	return s
}

func collect(t *testing.T, ticket *SaveTicket) []SaveEvent {
	t.Helper()
	var events []SaveEvent
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-ticket.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("events channel not closed")
		}
	}
}

func TestSaveWritesEachFormat(t *testing.T) {
	tests := []struct {
		format  processor.Format
		decoded string
	}{
		{processor.JPEG, "jpeg"},
		{processor.PNG, "png"},
		{processor.WEBP, "webp"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			saver, _, _ := newSaver(t, nil)
			src := loadedSession(t, 40, 30)
			out := filepath.Join(t.TempDir(), "out"+tt.format.Extension())

			ticket, err := saver.Save(context.Background(), src, processor.CompressionIntent{Format: tt.format, Quality: 80}, out)
			require.NoError(t, err)
			assert.Equal(t, out, ticket.Path)
			assert.Equal(t, tt.format, ticket.Format)

			events := collect(t, ticket)
			require.Len(t, events, 2)
			assert.Equal(t, SaveStarted, events[0].Type)
			assert.Equal(t, SaveSucceeded, events[1].Type)
			assert.Equal(t, ticket.ID, events[1].ID)
			require.NotNil(t, events[1].Outcome)
			assert.Equal(t, out, events[1].Outcome.Path)

			w, h, format := imgtest.ImageSize(t, out)
			assert.Equal(t, 40, w)
			assert.Equal(t, 30, h)
			assert.Equal(t, tt.decoded, format)

			outcome := ticket.Wait(context.Background())
			require.True(t, outcome.Success())
			info, err := os.Stat(out)
			require.NoError(t, err)
			assert.Equal(t, info.Size(), outcome.Bytes)
		})
	}
}

func TestSaveWithoutImage(t *testing.T) {
	saver, q, collector := newSaver(t, nil)
	out := filepath.Join(t.TempDir(), "out.jpg")

	ticket, err := saver.Save(context.Background(), session.New(), processor.DefaultCompression, out)
	require.ErrorIs(t, err, errors.ErrNoImage)
	assert.Nil(t, ticket)

	q.Stop()
	assert.Zero(t, collector.Total(metrics.SaveStartedTotal))
	assert.NoFileExists(t, out)
}

func TestSaveInvalidPathIsSynchronous(t *testing.T) {
	saver, q, collector := newSaver(t, nil)
	src := loadedSession(t, 10, 10)

	for _, path := range []string{
		"",
		filepath.Join(t.TempDir(), "missing", "out.jpg"),
	} {
		ticket, err := saver.Save(context.Background(), src, processor.DefaultCompression, path)
		require.ErrorIs(t, err, errors.ErrInvalidPath, path)
		assert.Nil(t, ticket)
	}

	q.Stop()
	assert.Zero(t, collector.Total(metrics.SaveStartedTotal))
}

func TestSaveUsesSnapshotFromCallTime(t *testing.T) {
	q := concurrency.NewTaskQueue(1)
	saver := NewAsyncSaver(q, storage.NewLocalProvider(""), nil, nil)
	src := loadedSession(t, 60, 40)
	out := filepath.Join(t.TempDir(), "out.png")

	ticket, err := saver.Save(context.Background(), src, processor.CompressionIntent{Format: processor.PNG}, out)
	require.NoError(t, err)

	// Edit the session before the queued save gets a worker.
	_, err = src.Resize(processor.ResizeIntent{Width: 6, Height: 4})
	require.NoError(t, err)
	q.Start(1)
	defer q.Stop()

	outcome := ticket.Wait(context.Background())
	require.NoError(t, outcome.Err)
	w, h, _ := imgtest.ImageSize(t, out)
	assert.Equal(t, 60, w)
	assert.Equal(t, 40, h)
}

func TestSaveUnknownFormatEncodesJPEG(t *testing.T) {
	saver, _, _ := newSaver(t, nil)
	out := filepath.Join(t.TempDir(), "out.jpg")

	ticket, err := saver.Save(context.Background(), loadedSession(t, 8, 8), processor.CompressionIntent{Format: processor.Format(42), Quality: 70}, out)
	require.NoError(t, err)
	assert.Equal(t, processor.JPEG, ticket.Format)
	require.NoError(t, ticket.Wait(context.Background()).Err)

	_, _, format := imgtest.ImageSize(t, out)
	assert.Equal(t, "jpeg", format)
}

type failingProvider struct {
	storage.Provider
	err   error
	panic bool
}

func (p *failingProvider) Write(ctx context.Context, path string, r io.Reader) (int64, error) {
	if p.panic {
		panic("disk on fire")
	}
	return 0, p.err
}

func TestSaveWriteFailure(t *testing.T) {
	cause := stderrors.New("disk full")
	saver, _, collector := newSaver(t, &failingProvider{err: cause})

	dir := t.TempDir()
	out := imgtest.WriteFile(t, dir, "keep.jpg", []byte("previous"))

	ticket, err := saver.Save(context.Background(), loadedSession(t, 8, 8), processor.DefaultCompression, out)
	require.NoError(t, err)

	events := collect(t, ticket)
	require.Len(t, events, 2)
	assert.Equal(t, SaveStarted, events[0].Type)
	assert.Equal(t, SaveFailed, events[1].Type)

	outcome := ticket.Wait(context.Background())
	assert.False(t, outcome.Success())
	assert.ErrorIs(t, outcome.Err, errors.ErrEncodeWrite)
	assert.ErrorIs(t, outcome.Err, cause)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	assert.Equal(t, 1.0, collector.Total(metrics.SaveFailedTotal))
	assert.Zero(t, collector.Total(metrics.SaveSucceededTotal))
}

func TestSavePanicBecomesFailure(t *testing.T) {
	saver, _, _ := newSaver(t, &failingProvider{panic: true})
	out := filepath.Join(t.TempDir(), "out.jpg")

	ticket, err := saver.Save(context.Background(), loadedSession(t, 8, 8), processor.DefaultCompression, out)
	require.NoError(t, err)

	events := collect(t, ticket)
	require.Len(t, events, 2)
	assert.Equal(t, SaveFailed, events[1].Type)
	assert.ErrorIs(t, ticket.Wait(context.Background()).Err, errors.ErrEncodeWrite)
}

func TestSaveMetrics(t *testing.T) {
	saver, _, collector := newSaver(t, nil)
	src := loadedSession(t, 8, 8)
	dir := t.TempDir()

	for _, name := range []string{"a.png", "b.png"} {
		ticket, err := saver.Save(context.Background(), src, processor.CompressionIntent{Format: processor.PNG}, filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, ticket.Wait(context.Background()).Err)
	}

	labels := map[string]string{"format": "PNG"}
	assert.Equal(t, 2.0, collector.Value(metrics.SaveStartedTotal, labels))
	assert.Equal(t, 2.0, collector.Value(metrics.SaveSucceededTotal, labels))
	require.NotNil(t, collector.GetMetric(metrics.SaveDurationSeconds, labels))
	assert.EqualValues(t, 2, collector.GetMetric(metrics.SaveDurationSeconds, labels).Count)
}

func TestSaveAfterQueueStopped(t *testing.T) {
	saver, q, _ := newSaver(t, nil)
	q.Stop()

	_, err := saver.Save(context.Background(), loadedSession(t, 4, 4), processor.DefaultCompression, filepath.Join(t.TempDir(), "x.jpg"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))
	assert.ErrorIs(t, err, concurrency.ErrQueueStopped)
}

func TestWaitHonoursContext(t *testing.T) {
	q := concurrency.NewTaskQueue(1)
	saver := NewAsyncSaver(q, storage.NewLocalProvider(""), nil, nil)

	ticket, err := saver.Save(context.Background(), loadedSession(t, 4, 4), processor.DefaultCompression, filepath.Join(t.TempDir(), "x.jpg"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	outcome := ticket.Wait(ctx)
	assert.ErrorIs(t, outcome.Err, context.DeadlineExceeded)

	// The save still completes once a worker is available.
	q.Start(1)
	defer q.Stop()
	assert.NoError(t, ticket.Wait(context.Background()).Err)
}

func TestSaveSurvivesCallerCancel(t *testing.T) {
	q := concurrency.NewTaskQueue(1)
	saver := NewAsyncSaver(q, storage.NewLocalProvider(""), nil, nil)
	out := filepath.Join(t.TempDir(), "x.png")

	ctx, cancel := context.WithCancel(context.Background())
	ticket, err := saver.Save(ctx, loadedSession(t, 4, 4), processor.CompressionIntent{Format: processor.PNG}, out)
	require.NoError(t, err)
	cancel()

	q.Start(1)
	defer q.Stop()
	require.NoError(t, ticket.Wait(context.Background()).Err)
	assert.FileExists(t, out)
}
