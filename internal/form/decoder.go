package form

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a requested form field is absent.
var ErrNotFound = errors.New("parameter not found")

// submittedFormField carries the structured JSON form the browser posts
// alongside the individual fields.
const submittedFormField = "json"

// Encoding identifies the wire encoding of a form submission.
type Encoding string

const (
	EncodingStandard  Encoding = "standard"
	EncodingMultipart Encoding = "multipart"
)

// Decoder gives uniform access to a submitted form regardless of how it was
// encoded on the wire.
type Decoder interface {
	// ContainsKey reports whether the field was submitted.
	ContainsKey(key string) bool
	// GetString returns the first value of a field.
	GetString(key string) (string, error)
	// SubmittedForm returns the structured form posted in the "json" field.
	// An absent field yields an empty object.
	SubmittedForm() (gjson.Result, error)
	// Encoding returns the encoding detected for the submission.
	Encoding() Encoding
}

// NewDecoder inspects the request content type once and returns the decoder
// for its encoding. The request body is consumed.
func NewDecoder(r *http.Request, logger *zap.Logger) (Decoder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if IsMultipart(r.Header.Get("Content-Type")) {
		return newMultipartDecoder(r, logger)
	}
	return newStandardDecoder(r)
}

// IsMultipart reports whether a content type selects multipart decoding.
func IsMultipart(contentType string) bool {
	return strings.HasPrefix(contentType, "multipart/")
}

// requestCharset returns the charset declared on the request, if any.
func requestCharset(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func parseSubmittedForm(d Decoder) (gjson.Result, error) {
	if !d.ContainsKey(submittedFormField) {
		return gjson.Parse("{}"), nil
	}
	raw, err := d.GetString(submittedFormField)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.Valid(raw) {
		return gjson.Result{}, fmt.Errorf("malformed structured form in %q field", submittedFormField)
	}
	return gjson.Parse(raw), nil
}

func notFound(key string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}
