package form

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

// MaxPartSize bounds the bytes read from a single multipart part.
const MaxPartSize = 32 << 20

// item is one part of a multipart submission.
type item struct {
	name        string
	contentType string
	data        []byte
	isFormField bool
}

// multipartDecoder reads fields from a multipart/form-data body. Parts are
// read once when the decoder is created.
type multipartDecoder struct {
	items   map[string]*item
	charset string
	logger  *zap.Logger
}

func newMultipartDecoder(r *http.Request, logger *zap.Logger) (*multipartDecoder, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("failed to read multipart form: %w", err)
	}
	d := &multipartDecoder{
		items:   make(map[string]*item),
		charset: requestCharset(r),
		logger:  logger,
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read multipart part: %w", err)
		}
		data, err := io.ReadAll(io.LimitReader(part, MaxPartSize+1))
		_ = part.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read part %q: %w", part.FormName(), err)
		}
		if len(data) > MaxPartSize {
			return nil, fmt.Errorf("part %q exceeds %d bytes", part.FormName(), MaxPartSize)
		}
		name := part.FormName()
		if name == "" {
			continue
		}
		if _, seen := d.items[name]; seen {
			continue
		}
		d.items[name] = &item{
			name:        name,
			contentType: part.Header.Get("Content-Type"),
			data:        data,
			isFormField: part.FileName() == "",
		}
	}
	return d, nil
}

func (d *multipartDecoder) ContainsKey(key string) bool {
	_, ok := d.items[key]
	return ok
}

// GetString returns the field value. A part without its own content type is
// decoded with the request charset when one was declared.
func (d *multipartDecoder) GetString(key string) (string, error) {
	it, ok := d.items[key]
	if !ok || !it.isFormField {
		return "", notFound(key)
	}
	if it.contentType != "" || d.charset == "" {
		return string(it.data), nil
	}
	enc, err := htmlindex.Get(d.charset)
	if err != nil {
		d.logger.Warn("Request has unsupported charset, using default",
			zap.String("parameter", key),
			zap.String("charset", d.charset),
			zap.Error(err),
		)
		return string(it.data), nil
	}
	decoded, err := enc.NewDecoder().Bytes(it.data)
	if err != nil {
		d.logger.Warn("Failed to decode parameter with request charset, using default",
			zap.String("parameter", key),
			zap.String("charset", d.charset),
			zap.Error(err),
		)
		return string(it.data), nil
	}
	return string(decoded), nil
}

func (d *multipartDecoder) SubmittedForm() (gjson.Result, error) {
	return parseSubmittedForm(d)
}

func (d *multipartDecoder) Encoding() Encoding {
	return EncodingMultipart
}
