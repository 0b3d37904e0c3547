package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Dimensions is a width/height pair logged as a nested object.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("width", d.Width)
	enc.AddInt("height", d.Height)
	return nil
}

// Size logs an image size under key.
func Size(key string, width, height int) zap.Field {
	return zap.Object(key, Dimensions{Width: width, Height: height})
}

// Path logs a filesystem path.
func Path(path string) zap.Field {
	return zap.String("path", path)
}

// Format logs an output format name.
func Format(format string) zap.Field {
	return zap.String("format", format)
}

// SaveID logs the identifier of a background save.
func SaveID(id string) zap.Field {
	return zap.String("save_id", id)
}
