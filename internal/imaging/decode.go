// Package imaging turns uploaded product photos into domain images.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"adstudio/internal/domain"
)

// MaxImages caps the photos a wizard accepts.
const MaxImages = domain.MaxImages

const decodeConcurrency = 4

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Source is one upload before decoding.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// DataURLSource wraps a base64 data URL.
func DataURLSource(name, dataURL string) Source {
	return Source{Name: name, Open: func() (io.ReadCloser, error) {
		_, data, err := ParseDataURL(dataURL)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}}
}

// MultipartSources wraps multipart file headers.
func MultipartSources(files []*multipart.FileHeader) []Source {
	out := make([]Source, len(files))
	for i, fh := range files {
		out[i] = Source{Name: filepath.Base(fh.Filename), Open: func() (io.ReadCloser, error) { return fh.Open() }}
	}
	return out
}

// DecodeAll reads, sniffs and measures every source in parallel. The result
// keeps the input order; the first failure aborts the batch.
func DecodeAll(ctx context.Context, sources []Source, maxBytes int64) ([]domain.Image, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no images provided", domain.ErrInvalidInput)
	}
	if len(sources) > MaxImages {
		return nil, fmt.Errorf("%w: at most %d images are accepted", domain.ErrInvalidInput, MaxImages)
	}
	images := make([]domain.Image, len(sources))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(decodeConcurrency)
	for i, src := range sources {
		i, src := i, src
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			img, err := decodeOne(src, maxBytes)
			if err != nil {
				return fmt.Errorf("image %d (%s): %w", i+1, src.Name, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func decodeOne(src Source, maxBytes int64) (domain.Image, error) {
	rc, err := src.Open()
	if err != nil {
		return domain.Image{}, err
	}
	defer rc.Close()

	reader := io.Reader(rc)
	if maxBytes > 0 {
		reader = io.LimitReader(rc, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return domain.Image{}, fmt.Errorf("read: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return domain.Image{}, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, maxBytes)
	}
	return FromBytes(src.Name, data)
}

// FromBytes validates raw image bytes.
func FromBytes(name string, data []byte) (domain.Image, error) {
	if len(data) == 0 {
		return domain.Image{}, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}
	mime := http.DetectContentType(data)
	if !allowedMIME[mime] {
		return domain.Image{}, fmt.Errorf("%w: unsupported image type %s", domain.ErrInvalidInput, mime)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.Image{}, fmt.Errorf("%w: undecodable image: %v", domain.ErrInvalidInput, err)
	}
	return domain.Image{
		Name:   name,
		MIME:   mime,
		Data:   data,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// ParseDataURL decodes a base64 data URL into its media type and payload.
func ParseDataURL(s string) (string, []byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return "", nil, fmt.Errorf("%w: not a data url", domain.ErrInvalidInput)
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("%w: data url must be base64 encoded", domain.ErrInvalidInput)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid base64 payload", domain.ErrInvalidInput)
	}
	return strings.TrimSuffix(meta, ";base64"), data, nil
}
