// Package session holds the image being edited: the decoded original and
// the derived current image that resizes replace.
package session

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/leeforge/resizer/errors"
	"github.com/leeforge/resizer/logging"
	"github.com/leeforge/resizer/media/processor"
	"github.com/leeforge/resizer/media/storage"
	"github.com/leeforge/resizer/metrics"
	"go.uber.org/zap"
)

// Session is Empty until a successful Load and Loaded afterwards. Methods
// are safe to call from several goroutines, but the front end is expected
// to serialise load, resize and clear.
type Session struct {
	mu       sync.RWMutex
	original image.Image
	current  image.Image
	path     string
	format   string

	resizer processor.Resizer
	logger  logging.Logger
	metrics *metrics.Collector
}

type Option func(*Session)

// WithResizer replaces the resampling backend.
func WithResizer(r processor.Resizer) Option {
	return func(s *Session) { s.resizer = r }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(s *Session) { s.metrics = c }
}

// New returns an empty session.
func New(opts ...Option) *Session {
	s := &Session{
		resizer: processor.NewNativeProcessor(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load decodes path into original and a copy into current. On failure the
// previous state is left untouched.
func (s *Session) Load(path string) (processor.Size, error) {
	img, format, err := decodeFile(path)
	if err != nil {
		s.metrics.IncCounter(metrics.SessionLoadTotal, map[string]string{"result": "error"})
		s.logger.Warn("load failed", logging.Path(path), zap.Error(err))
		return processor.Size{}, err
	}

	size := processor.SizeOf(img)
	current := processor.Clone(img)

	s.mu.Lock()
	s.original = img
	s.current = current
	s.path = path
	s.format = format
	s.mu.Unlock()

	s.metrics.IncCounter(metrics.SessionLoadTotal, map[string]string{"result": "ok"})
	s.logger.Info("image loaded",
		logging.Path(path),
		logging.Format(format),
		logging.Size("size", size.Width, size.Height))
	return size, nil
}

func decodeFile(path string) (image.Image, string, error) {
	if !storage.IsSupportedImage(path) {
		return nil, "", errors.NewLoad(path, fmt.Errorf("unsupported file type %q", filepath.Ext(path)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.NewLoad(path, err)
	}

	img, format, err := processor.Decode(data)
	if err != nil {
		return nil, "", errors.NewLoad(path, err)
	}

	size := processor.SizeOf(img)
	if !size.Positive() {
		return nil, "", errors.NewLoad(path, errors.NewInvalidImage(size.Width, size.Height))
	}
	return img, format, nil
}

// Resize resamples original into a new current image. The size comes from
// processor.ComputeSize against the original, so repeated resizes never
// compound resampling loss.
func (s *Session) Resize(intent processor.ResizeIntent) (processor.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.original == nil {
		return processor.Size{}, errors.NewNoImage("resize")
	}
	if err := intent.Validate(); err != nil {
		return processor.Size{}, err
	}

	size, err := processor.ComputeSize(processor.SizeOf(s.original), intent.Target(), intent.MaintainRatio)
	if err != nil {
		return processor.Size{}, err
	}

	s.current = s.resizer.Resample(s.original, size, intent.Method)

	s.metrics.IncCounter(metrics.SessionResizeTotal, map[string]string{"method": intent.Method.String()})
	s.logger.Info("image resized",
		logging.Size("target", intent.Width, intent.Height),
		logging.Size("size", size.Width, size.Height),
		zap.Bool("maintain_ratio", intent.MaintainRatio),
		zap.Stringer("method", intent.Method))
	return size, nil
}

// FollowWidth returns the ratio-locked size for a new width without
// changing the session.
func (s *Session) FollowWidth(width int) (processor.Size, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.original == nil {
		return processor.Size{}, errors.NewNoImage("follow_width")
	}
	return processor.FollowWidth(processor.SizeOf(s.original), width)
}

// Reset replaces current with a fresh copy of original.
func (s *Session) Reset() (processor.Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.original == nil {
		return processor.Size{}, errors.NewNoImage("reset")
	}
	s.current = processor.Clone(s.original)

	size := processor.SizeOf(s.current)
	s.logger.Debug("image reset", logging.Size("size", size.Width, size.Height))
	return size, nil
}

// Clear drops both images and the source path.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.original = nil
	s.current = nil
	s.path = ""
	s.format = ""
	s.logger.Debug("session cleared")
}

// Preview returns a copy of current scaled down to fit box. It never
// upscales and does not change the session. ok is false when the session is
// empty or the box is not positive.
func (s *Session) Preview(box processor.Size) (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, false
	}
	thumb, err := s.resizer.Thumbnail(s.current, box)
	if err != nil {
		s.logger.Debug("preview unavailable", zap.Error(err))
		return nil, false
	}
	return thumb, true
}

// DefaultOutputPath derives the save path for the loaded file with the
// extension of format. An empty suffix means storage.DefaultSuffix.
func (s *Session) DefaultOutputPath(format processor.Format, suffix string) (string, error) {
	s.mu.RLock()
	path := s.path
	s.mu.RUnlock()

	if path == "" {
		return "", errors.NewNoSourcePath()
	}
	return storage.DefaultOutputPath(path, format.Extension(), suffix)
}

// Snapshot returns an independent copy of current for a background save.
func (s *Session) Snapshot() (image.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, errors.NewNoImage("save")
	}
	return processor.Clone(s.current), nil
}

func (s *Session) HasImage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.original != nil
}

// OriginalSize is the zero Size when empty.
func (s *Session) OriginalSize() processor.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.original == nil {
		return processor.Size{}
	}
	return processor.SizeOf(s.original)
}

// CurrentSize is the zero Size when empty.
func (s *Session) CurrentSize() processor.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return processor.Size{}
	}
	return processor.SizeOf(s.current)
}

func (s *Session) SourcePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// SourceFormat is the decoder name of the loaded file, e.g. "png".
func (s *Session) SourceFormat() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.format
}
