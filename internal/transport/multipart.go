package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// ProgressFunc receives upload progress as a rounded percentage 0-100. It is
// advisory and called from the goroutine writing the request body.
type ProgressFunc func(percent int)

// Field is a plain multipart form field.
type Field struct {
	Name  string
	Value string
}

// File is a multipart file part.
type File struct {
	Field    string
	FileName string
	// ContentType defaults to a type sniffed from Data.
	ContentType string
	Data        []byte
}

// Form is a multipart/form-data body.
type Form struct {
	Fields []Field
	Files  []File
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encode writes the form into a buffer and returns it with its content type.
func (f *Form) encode() (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, file := range f.Files {
		contentType := file.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(file.Data)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.FileName)))
		h.Set("Content-Type", contentType)

		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("could not create form file: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("could not copy file data: %w", err)
		}
	}

	for _, field := range f.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("could not write field %s: %w", field.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("could not close writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

// PostMultipart uploads form and unmarshals the JSON response. Upload
// progress is reported to progress when it is not nil.
func PostMultipart[T any](ctx context.Context, c *Client, endpoint string, form *Form, progress ProgressFunc) (*T, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, c.Invalid(err)
	}
	total := int64(body.Len())

	var reader io.Reader = body
	if progress != nil {
		pr := &progressReader{r: body, total: total, last: -1, fn: progress}
		pr.report()
		reader = pr
	}

	status, respBody, err := c.Do(ctx, Request{
		Method:        http.MethodPost,
		Endpoint:      endpoint,
		Body:          reader,
		ContentType:   contentType,
		ContentLength: total,
	})
	if err != nil {
		return nil, err
	}
	return decode[T](c, status, respBody)
}

// progressReader counts bytes read by the transport and reports each new
// whole percentage once.
type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	last  int
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.sent += int64(n)
	if n > 0 || err == io.EOF {
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	pct := 100
	if p.total > 0 {
		pct = int(math.Round(float64(p.sent) * 100 / float64(p.total)))
	}
	if pct > 100 {
		pct = 100
	}
	if pct > p.last {
		p.last = pct
		p.fn(pct)
	}
}
