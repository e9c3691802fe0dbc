// Package upload stores editor images and returns their public URLs.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var uploadLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	uploadLogger = l
}

var (
	ErrUnsupportedImage = errors.New("only JPEG, PNG and WEBP images are allowed")
	ErrImageTooLarge    = errors.New("image is too large")
	ErrEmptyImage       = errors.New("image is empty")
	ErrNoPublicURL      = errors.New("upload.public_base_url is required when no endpoint or AWS region is set")
)

// Uploader is the asset upload collaborator.
type Uploader interface {
	Upload(ctx context.Context, img *Image) (string, error)
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Image is an upload that passed the type and size checks.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Key is the object name an image is stored under.
func (img *Image) Key() string {
	return "images/" + uuid.NewString() + extensions[img.ContentType]
}

// ReadImage reads at most maxBytes from r and checks the content is an
// allowed image type, sniffing the bytes rather than trusting the client.
func ReadImage(name string, r io.Reader, maxBytes int64) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrImageTooLarge, maxBytes)
	}

	contentType := http.DetectContentType(data)
	if _, ok := extensions[contentType]; !ok {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedImage, contentType)
	}

	return &Image{Name: name, ContentType: contentType, Data: data}, nil
}

func (img *Image) Reader() io.Reader {
	return bytes.NewReader(img.Data)
}
