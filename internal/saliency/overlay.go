package saliency

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/transform"
)

// Overlay is a heatmap blended over the input image.
type Overlay struct {
	Image *image.RGBA
	// URI is the PNG-encoded overlay as a data URI.
	URI string
}

// Blend resizes original to the heatmap size, mixes heat over it at opacity
// and rescales the result so its brightest channel reaches full intensity.
func Blend(original image.Image, heat *image.RGBA, opacity float64) *image.RGBA {
	b := heat.Bounds()
	base := transform.Resize(original, b.Dx(), b.Dy(), transform.Linear)
	out := blend.Opacity(base, heat, clampOpacity(opacity))
	stretch(out)
	return out
}

func stretch(img *image.RGBA) {
	var hi uint8
	for i, v := range img.Pix {
		if i%4 != 3 && v > hi {
			hi = v
		}
	}
	if hi == 0 || hi == 0xff {
		return
	}
	scale := 255 / float64(hi)
	for i, v := range img.Pix {
		if i%4 == 3 {
			img.Pix[i] = 0xff
			continue
		}
		img.Pix[i] = uint8(float64(v)*scale + 0.5)
	}
}

// EncodePNG encodes img as a base64 PNG data URI.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func clampOpacity(o float64) float64 {
	switch {
	case o != o, o < 0:
		return 0
	case o > 1:
		return 1
	}
	return o
}
