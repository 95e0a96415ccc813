package api

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// Form accumulates plain fields and file attachments for a multipart POST.
// Files are read from disk at encode time; the whole body is buffered so a
// failed request can be retried with an identical payload.
type Form struct {
	fields [][2]string
	files  []formFile
}

type formFile struct {
	field string
	path  string
}

func NewForm() *Form {
	return &Form{}
}

// AddField appends a plain text field.
func (f *Form) AddField(name, value string) *Form {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// AddFile attaches the file at path under the given field name. The part's
// content type is derived from the file extension.
func (f *Form) AddFile(field, path string) *Form {
	f.files = append(f.files, formFile{field: field, path: path})
	return f
}

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, "", err
		}
	}

	for _, file := range f.files {
		data, err := os.ReadFile(file.path)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", file.path, err)
		}

		contentType := mime.TypeByExtension(filepath.Ext(file.path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
			escapeQuotes(file.field), escapeQuotes(filepath.Base(file.path))))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
