package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

const (
	dataURLPrefix = "data:image/png;base64,"
	maxWidth      = 600
	maxPayload    = 2 << 20 // 2 MiB decoded
)

var (
	ErrInvalidPayload = errors.New("signature payload must be a base64 PNG data URL")
	ErrTooLarge       = errors.New("signature image exceeds the size limit")
)

// Normalize validates a signature image payload and downscales it to the
// storage width. The result is the same data-URL shape the UI submitted.
func Normalize(payload string) (string, error) {
	raw, ok := strings.CutPrefix(payload, dataURLPrefix)
	if !ok {
		return "", ErrInvalidPayload
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(decoded) > maxPayload {
		return "", ErrTooLarge
	}

	img, err := png.Decode(bytes.NewReader(decoded))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxWidth {
		scale := float64(maxWidth) / float64(bounds.Dx())
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, int(float64(bounds.Dy())*scale)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode signature image: %w", err)
	}

	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
