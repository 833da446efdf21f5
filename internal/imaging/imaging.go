// Package imaging normalizes uploaded avatar images: any accepted input is
// decoded, scaled to a fixed square, and re-encoded as PNG so clients always
// receive a single predictable format.
package imaging

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	"image/png"
	"strings"
)

// AvatarSize is the edge length of the stored square avatar.
const AvatarSize = 250

// MaxUploadBytes caps the accepted upload size.
const MaxUploadBytes = 1_000_000

var (
	ErrBadFormat = errors.New("upload must be a .jpg, .jpeg or .png file")
	ErrTooLarge  = errors.New("upload exceeds the 1MB size limit")
	ErrDecode    = errors.New("could not decode image data")
)

// AcceptableName reports whether the uploaded filename carries an accepted
// image extension.
func AcceptableName(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".jpg") ||
		strings.HasSuffix(lower, ".jpeg") ||
		strings.HasSuffix(lower, ".png")
}

// Normalize decodes raw image bytes, scales them to AvatarSize x AvatarSize
// and re-encodes the result as PNG.
func Normalize(data []byte) ([]byte, error) {
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrDecode
	}

	dst := scale(src, AvatarSize, AvatarSize)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// scale resizes src to the given dimensions with nearest-neighbor sampling.
// Avatars are small; quality beyond that is not worth a resampling dependency.
func scale(src image.Image, width, height int) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		srcY := bounds.Min.Y + y*bounds.Dy()/height
		for x := 0; x < width; x++ {
			srcX := bounds.Min.X + x*bounds.Dx()/width
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}
