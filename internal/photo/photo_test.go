package photo

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestEncodeFitsAndRoundTrips(t *testing.T) {
	enc := NewEncoder(100, 0)
	url, err := enc.Encode(pngBytes(t, 300, 150))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Fatalf("Encode() prefix = %q", url[:30])
	}

	img, err := Decode(url)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("decoded size = %dx%d, want 100x50", b.Dx(), b.Dy())
	}
}

func TestEncodeKeepsSmallImages(t *testing.T) {
	url, err := NewEncoder(400, 0).Encode(pngBytes(t, 40, 30))
	if err != nil {
		t.Fatal(err)
	}
	img, err := Decode(url)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("decoded size = %dx%d, want 40x30", b.Dx(), b.Dy())
	}
}

func TestEncodeRejects(t *testing.T) {
	enc := NewEncoder(100, 64)
	if _, err := enc.Encode([]byte("%PDF-1.4 not an image")); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("pdf input error = %v, want ErrUnsupportedImage", err)
	}
	if _, err := enc.Encode(pngBytes(t, 50, 50)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized input error = %v, want ErrTooLarge", err)
	}
}

func TestDecodeBytesRejectsNonDataURL(t *testing.T) {
	for _, in := range []string{"", "https://example.com/a.png", "data:text/plain;base64,aGk=", "data:image/png;base64,@@@"} {
		if _, err := DecodeBytes(in); !errors.Is(err, ErrNotDataURL) {
			t.Errorf("DecodeBytes(%q) error = %v, want ErrNotDataURL", in, err)
		}
	}
}

// hugePNG returns a small PNG whose header claims w x h pixels.
func hugePNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngBytes(t, 1, 1)
	// IHDR data starts after the 8 byte signature, length and type.
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestEncodeRejectsPixelBomb(t *testing.T) {
	bomb := hugePNG(t, 40000, 40000)
	if len(bomb) > 1024 {
		t.Fatalf("bomb is %d bytes", len(bomb))
	}
	if _, err := NewEncoder(400, 5<<20).Encode(bomb); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Encode() error = %v, want ErrTooLarge", err)
	}

	enc := NewEncoder(400, 0)
	enc.MaxPixels = 100 * 100
	if _, err := enc.Encode(pngBytes(t, 200, 200)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Encode() over pixel budget error = %v, want ErrTooLarge", err)
	}

	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(bomb)
	if _, err := Decode(url); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Decode() error = %v, want ErrTooLarge", err)
	}
}

func TestCheck(t *testing.T) {
	enc := NewEncoder(400, 4<<10)
	small := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 10, 10))
	bomb := "data:image/png;base64," + base64.StdEncoding.EncodeToString(hugePNG(t, 40000, 40000))
	long := "data:image/png;base64," + strings.Repeat("A", 8<<10)

	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", nil},
		{"png data url", small, nil},
		{"plain text", "hello", ErrNotDataURL},
		{"remote url", "https://example.com/me.png", ErrNotDataURL},
		{"not an image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello there")), ErrUnsupportedImage},
		{"too long", long, ErrTooLarge},
		{"pixel bomb", bomb, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := enc.Check(tt.in)
			if tt.want == nil && err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("Check() error = %v, want %v", err, tt.want)
			}
		})
	}
}
