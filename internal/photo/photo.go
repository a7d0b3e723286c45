package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	_ "github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrTooLarge         = errors.New("image too large")
	ErrNotDataURL       = errors.New("not an image data URL")
)

var accepted = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

const (
	// DefaultMaxPixels bounds the decoded area of any image, about a 12
	// megapixel phone photo with headroom.
	DefaultMaxPixels = 16 << 20
	// DefaultMaxBytes applies when an encoder has no byte limit.
	DefaultMaxBytes = 5 << 20
)

// Encoder turns an uploaded image into the inline data URL stored in a
// biodata record. Images are auto-oriented, fitted into MaxDim x MaxDim and
// re-encoded as JPEG.
type Encoder struct {
	MaxDim    int
	MaxBytes  int64
	MaxPixels int
	Quality   int
}

// NewEncoder creates an encoder with the given limits.
func NewEncoder(maxDim int, maxBytes int64) *Encoder {
	if maxDim <= 0 {
		maxDim = 400
	}
	return &Encoder{MaxDim: maxDim, MaxBytes: maxBytes, MaxPixels: DefaultMaxPixels, Quality: 85}
}

// Encode validates data and returns a data:image/jpeg;base64 URL.
func (e *Encoder) Encode(data []byte) (string, error) {
	if e.MaxBytes > 0 && int64(len(data)) > e.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), accepted...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}
	if err := checkPixels(data, e.MaxPixels); err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", mt.String(), err)
	}
	b := img.Bounds()
	if b.Dx() > e.MaxDim || b.Dy() > e.MaxDim {
		img = imaging.Fit(img, e.MaxDim, e.MaxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(e.Quality)); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Check accepts what Encode may return and what older clients stored: an
// empty string, or a base64 image data URL within the byte and pixel limits.
func (e *Encoder) Check(dataURL string) error {
	if dataURL == "" {
		return nil
	}
	maxBytes := e.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(dataURL) > base64.StdEncoding.EncodedLen(int(maxBytes))+len("data:image/webp;base64,") {
		return fmt.Errorf("%w: %d characters", ErrTooLarge, len(dataURL))
	}
	raw, err := DecodeBytes(dataURL)
	if err != nil {
		return err
	}
	if mt := mimetype.Detect(raw); !mimetype.EqualsAny(mt.String(), accepted...) {
		return fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}
	return checkPixels(raw, e.MaxPixels)
}

// checkPixels reads only the image header and rejects images whose decoded
// area exceeds maxPixels.
func checkPixels(data []byte, maxPixels int) error {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d pixels", ErrTooLarge, cfg.Width, cfg.Height)
	}
	return nil
}

// Decode parses a data URL produced by Encode (or any base64 image data URL)
// back into an image. Images over DefaultMaxPixels are refused.
func Decode(dataURL string) (image.Image, error) {
	raw, err := DecodeBytes(dataURL)
	if err != nil {
		return nil, err
	}
	if err := checkPixels(raw, DefaultMaxPixels); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	return img, nil
}

// DecodeBytes returns the raw image bytes carried by a base64 data URL.
func DecodeBytes(dataURL string) ([]byte, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrNotDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDataURL, err)
	}
	return raw, nil
}

// JPEG re-encodes img for embedding into documents.
func JPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
