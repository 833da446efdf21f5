package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestNormalize_ScalesToAvatarSize(t *testing.T) {
	out, err := Normalize(testPNG(t, 40, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != AvatarSize || bounds.Dy() != AvatarSize {
		t.Errorf("expected %dx%d, got %dx%d", AvatarSize, AvatarSize, bounds.Dx(), bounds.Dy())
	}
}

func TestNormalize_RejectsGarbage(t *testing.T) {
	if _, err := Normalize([]byte("not an image")); err != ErrDecode {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestNormalize_RejectsOversized(t *testing.T) {
	big := make([]byte, MaxUploadBytes+1)
	if _, err := Normalize(big); err != ErrTooLarge {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestAcceptableName(t *testing.T) {
	for _, name := range []string{"me.jpg", "me.jpeg", "me.png", "ME.PNG", "photo.holiday.JPG"} {
		if !AcceptableName(name) {
			t.Errorf("expected %q to be acceptable", name)
		}
	}
	for _, name := range []string{"me.gif", "me.bmp", "me", "jpg", "archive.png.zip"} {
		if AcceptableName(name) {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}
