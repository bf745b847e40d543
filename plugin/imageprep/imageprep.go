// Package imageprep normalizes image attachments before they are
// forwarded to the completion provider: oversized inline images are
// decoded and downscaled so a casual 12MP photo does not blow up the
// upstream request.
package imageprep

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxDimension is the largest edge kept after downscaling.
const DefaultMaxDimension = 2048

// Preparer downscales data-URI images. Decoding is CPU and memory
// heavy, so concurrent preparations are bounded by a semaphore.
type Preparer struct {
	sem    *semaphore.Weighted
	maxDim int
}

// New creates a Preparer allowing maxConcurrent parallel decodes.
func New(maxConcurrent int64, maxDim int) *Preparer {
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	return &Preparer{
		sem:    semaphore.NewWeighted(maxConcurrent),
		maxDim: maxDim,
	}
}

// Prepare returns a possibly-downscaled replacement for the given
// attachment URL. Remote URLs and non-raster media (SVG) pass through
// untouched.
func (p *Preparer) Prepare(ctx context.Context, mediaType, url string) (string, error) {
	if !strings.HasPrefix(url, "data:") {
		return url, nil
	}
	if mediaType == "image/svg+xml" {
		return url, nil
	}

	raw, err := decodeDataURI(url)
	if err != nil {
		return "", err
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", errors.Wrap(err, "image preparation cancelled")
	}
	defer p.sem.Release(1)

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", errors.Wrap(err, "failed to decode image")
	}

	bounds := img.Bounds()
	if bounds.Dx() <= p.maxDim && bounds.Dy() <= p.maxDim {
		return url, nil
	}

	resized := imaging.Fit(img, p.maxDim, p.maxDim, imaging.Lanczos)
	return encodeDataURI(resized, mediaType)
}

func decodeDataURI(url string) ([]byte, error) {
	_, payload, found := strings.Cut(url, ",")
	if !found {
		return nil, errors.New("malformed data URI")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(err, "malformed base64 payload")
	}
	return raw, nil
}

func encodeDataURI(img image.Image, mediaType string) (string, error) {
	format := imaging.JPEG
	switch mediaType {
	case "image/png":
		format = imaging.PNG
	case "image/gif":
		format = imaging.GIF
	case "image/jpeg", "image/jpg":
		format = imaging.JPEG
	default:
		// Re-encode exotic raster formats as JPEG.
		mediaType = "image/jpeg"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return "", errors.Wrap(err, "failed to encode image")
	}
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}
