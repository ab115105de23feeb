// Package upload turns uploaded image files into board images.
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"TierlistBackend/internal/model"
)

var (
	ErrEmptyBlob = errors.New("empty file")
	ErrNotImage  = errors.New("file is not an image")
	ErrTooLarge  = errors.New("file exceeds upload limit")
)

// Blob is one uploaded file.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

type Decoder struct {
	maxBytes int64
	newID    func() string
	logger   *zap.Logger
}

type Option func(*Decoder)

// WithMaxBytes caps the size of a single blob. Zero or less means no cap.
func WithMaxBytes(n int64) Option {
	return func(d *Decoder) { d.maxBytes = n }
}

// WithIDFunc replaces the UUID generator.
func WithIDFunc(f func() string) Option {
	return func(d *Decoder) { d.newID = f }
}

func NewDecoder(logger *zap.Logger, opts ...Option) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Decoder{
		newID:  func() string { return uuid.New().String() },
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ingest decodes every blob concurrently and returns the images in input
// order once all of them are done. If any blob fails the whole batch fails
// and no image is returned.
func (d *Decoder) Ingest(ctx context.Context, blobs []Blob) ([]model.Image, error) {
	images := make([]model.Image, len(blobs))

	g, ctx := errgroup.WithContext(ctx)
	for i, blob := range blobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := d.DataURI(blob)
			if err != nil {
				return fmt.Errorf("decode %q: %w", blob.Name, err)
			}
			images[i] = model.Image{ID: d.newID(), Src: src, Tier: model.Unranked}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		d.logger.Error("upload batch dropped", zap.Int("files", len(blobs)), zap.Error(err))
		return nil, err
	}

	d.logger.Debug("upload batch decoded", zap.Int("files", len(blobs)))
	return images, nil
}

// DataURI encodes a blob as a base64 data URI. The declared content type is
// used when it names an image; otherwise the type is sniffed from the bytes.
func (d *Decoder) DataURI(b Blob) (string, error) {
	if len(b.Data) == 0 {
		return "", ErrEmptyBlob
	}
	if d.maxBytes > 0 && int64(len(b.Data)) > d.maxBytes {
		return "", fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(b.Data), d.maxBytes)
	}

	mediaType := imageType(b.ContentType)
	if mediaType == "" {
		mediaType = imageType(http.DetectContentType(b.Data))
	}
	if mediaType == "" {
		return "", ErrNotImage
	}

	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(mediaType) + base64.StdEncoding.EncodedLen(len(b.Data)))
	sb.WriteString("data:")
	sb.WriteString(mediaType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(b.Data))
	return sb.String(), nil
}

func imageType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return ""
	}
	return mediaType
}
