// Package storage keeps uploaded images on local disk or in S3 and turns
// submitted payloads into stored objects.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize bounds a decoded image.
const MaxImageSize = 10 << 20

var (
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooLarge = errors.New("image too large")
)

// Storage stores objects under keys and renders their public URLs.
type Storage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Image is a decoded, sniffed image payload.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeDataURI decodes a "data:image/<type>;base64,<payload>" string. The
// declared type is ignored; the payload is sniffed instead.
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(uri, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image") {
		return nil, fmt.Errorf("%w: expected a base64 image data URI", ErrInvalidImage)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return Sniff(data)
}

// Sniff checks that data is an image and records its type.
func Sniff(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrInvalidImage, mt.String())
	}
	return &Image{Data: data, ContentType: mt.String(), Extension: mt.Extension()}, nil
}

// NewKey returns a fresh object key under prefix, for example
// "recipes/6f1c....png".
func NewKey(prefix string, img *Image) string {
	return strings.TrimSuffix(prefix, "/") + "/" + uuid.NewString() + img.Extension
}

// Put stores img under a fresh key and returns the key.
func Put(ctx context.Context, s Storage, prefix string, img *Image) (string, error) {
	key := NewKey(prefix, img)
	if err := s.Save(ctx, key, img.Data, img.ContentType); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return key, nil
}
