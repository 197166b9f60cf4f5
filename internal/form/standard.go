package form

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// standardDecoder reads URL-encoded form fields and query parameters.
type standardDecoder struct {
	values url.Values
}

func newStandardDecoder(r *http.Request) (*standardDecoder, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}
	return &standardDecoder{values: r.Form}, nil
}

// NewValuesDecoder returns a decoder over already parsed values.
func NewValuesDecoder(values url.Values) Decoder {
	return &standardDecoder{values: values}
}

func (d *standardDecoder) ContainsKey(key string) bool {
	_, ok := d.values[key]
	return ok
}

func (d *standardDecoder) GetString(key string) (string, error) {
	values, ok := d.values[key]
	if !ok || len(values) == 0 {
		return "", notFound(key)
	}
	return values[0], nil
}

func (d *standardDecoder) SubmittedForm() (gjson.Result, error) {
	return parseSubmittedForm(d)
}

func (d *standardDecoder) Encoding() Encoding {
	return EncodingStandard
}
