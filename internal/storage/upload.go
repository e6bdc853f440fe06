// Package storage handles uploaded images on local disk.  Files are first
// written to a staging directory and only moved to their public location
// after the database transaction that references them has committed.
package storage

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmpty           = errors.New("file is empty")
	ErrTooLarge        = errors.New("file exceeds the size limit")
	ErrUnsupportedType = errors.New("file type not allowed")
)

// allowedImages maps the accepted sniffed MIME types to stored extensions.
var allowedImages = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Upload is one incoming file, decoupled from mime/multipart so callers and
// tests can feed any source.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// FromMultipart adapts a parsed form file.
func FromMultipart(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// Inspect checks the declared size and sniffs the content type.  It returns
// the extension the file will be stored with.  The client-supplied name and
// Content-Type are never trusted.
func Inspect(u Upload, maxBytes int64) (ext string, err error) {
	if u.Size <= 0 {
		return "", ErrEmpty
	}
	if maxBytes > 0 && u.Size > maxBytes {
		return "", ErrTooLarge
	}
	f, err := u.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	for m, e := range allowedImages {
		if mt.Is(m) {
			return e, nil
		}
	}
	return "", ErrUnsupportedType
}
