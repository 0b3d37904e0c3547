package json

import (
	"io"

	"github.com/creasty/defaults"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Encoder writes indented JSON documents, filling `default` tags first.
type Encoder struct {
	*jsoniter.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return &Encoder{Encoder: enc}
}

// Encode fills `default` tags on v before encoding it.
func (e *Encoder) Encode(v any) error {
	if err := defaults.Set(v); err != nil {
		return err
	}
	return e.Encoder.Encode(v)
}

func Marshal(v any) ([]byte, error) {
	if err := defaults.Set(v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	if err := defaults.Set(v); err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
