package bind

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFieldBytes caps each text field of a multipart body.
const MaxFieldBytes = 64 << 10

var (
	// ErrFileTooLarge is returned when a file part exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrFieldTooLarge is returned when a text field exceeds MaxFieldBytes.
	ErrFieldTooLarge = errors.New("form field too large")
	// ErrNotMultipart is returned for requests without a multipart body.
	ErrNotMultipart = errors.New("request is not multipart/form-data")
)

// File is an uploaded file spooled to a local temp file.
type File struct {
	Field       string
	Filename    string
	Path        string
	Size        int64
	ContentType string // sniffed from content, not taken from the client
	Extension   string // extension matching ContentType, e.g. ".png"
}

// Open opens the spooled file for reading.
func (f *File) Open() (*os.File, error) { return os.Open(f.Path) }

// Form is a parsed multipart body.
type Form struct {
	Fields map[string]string
	Files  map[string]*File
}

// Value returns a trimmed text field.
func (f *Form) Value(key string) string { return strings.TrimSpace(f.Fields[key]) }

// File returns the file uploaded under key, or nil.
func (f *Form) File(key string) *File { return f.Files[key] }

// Cleanup removes every temp file. Safe on a nil Form.
func (f *Form) Cleanup() {
	if f == nil {
		return
	}
	for _, file := range f.Files {
		os.Remove(file.Path)
	}
}

// Multipart reads the request body part by part. File parts are streamed to
// temp files and never held in memory; a part larger than maxFileBytes aborts
// parsing with ErrFileTooLarge. On error every temp file already written is
// removed. Callers must defer form.Cleanup() on success.
func Multipart(r *http.Request, maxFileBytes int64) (*Form, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, ErrNotMultipart
	}

	form := &Form{Fields: map[string]string{}, Files: map[string]*File{}}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			form.Cleanup()
			return nil, fmt.Errorf("multipart: %w", err)
		}

		name := part.FormName()
		if name == "" {
			part.Close()
			continue
		}

		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, MaxFieldBytes+1))
			part.Close()
			if err != nil {
				form.Cleanup()
				return nil, fmt.Errorf("multipart: read field %s: %w", name, err)
			}
			if len(value) > MaxFieldBytes {
				form.Cleanup()
				return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFieldTooLarge, name, MaxFieldBytes)
			}
			form.Fields[name] = string(value)
			continue
		}

		file, err := spool(part, name, part.FileName(), maxFileBytes)
		part.Close()
		if err != nil {
			form.Cleanup()
			return nil, err
		}
		if prev, ok := form.Files[name]; ok {
			os.Remove(prev.Path)
		}
		form.Files[name] = file
	}
}

func spool(src io.Reader, field, filename string, maxBytes int64) (*File, error) {
	tmp, err := os.CreateTemp("", "agromap-upload-*")
	if err != nil {
		return nil, fmt.Errorf("multipart: temp file: %w", err)
	}

	n, err := io.Copy(tmp, io.LimitReader(src, maxBytes+1))
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("multipart: write %s: %w", field, err)
	}
	if n > maxBytes {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, filename, maxBytes)
	}

	mt, err := mimetype.DetectFile(tmp.Name())
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("multipart: detect type: %w", err)
	}
	contentType, _, _ := mime.ParseMediaType(mt.String())

	return &File{
		Field:       field,
		Filename:    filepath.Base(filename),
		Path:        tmp.Name(),
		Size:        n,
		ContentType: contentType,
		Extension:   mt.Extension(),
	}, nil
}
