// Package preprocess turns arbitrary decoded images into the normalized
// 3×224×224 tensors the classifiers consume.
package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"io"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"breedd/internal/model"
)

// Size is the square side length of the network input.
const Size = 224

// ImageNet channel statistics.
var (
	Mean = [3]float32{0.485, 0.456, 0.406}
	Std  = [3]float32{0.229, 0.224, 0.225}
)

// Decode reads an encoded image (JPEG, PNG, GIF, BMP or WebP). Any failure is
// reported as an InvalidImageError.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", &InvalidImageError{Err: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", &InvalidImageError{Reason: "image has no pixels"}
	}
	return img, format, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &InvalidImageError{Reason: "empty image"}
	}
	return Decode(bytes.NewReader(data))
}

// ToRGB converts img to an opaque NRGBA image. Grayscale is replicated across
// channels; alpha is discarded without compositing.
func ToRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.A = 0xff
			out.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return out
}

// Tensor produces the normalized CHW input for img.
func Tensor(img image.Image) *model.Tensor {
	return TensorSize(img, Size)
}

// TensorSize is Tensor with an explicit side length.
func TensorSize(img image.Image, size int) *model.Tensor {
	resized := resize.Resize(uint(size), uint(size), ToRGB(img), resize.Bilinear)
	b := resized.Bounds()
	t := model.NewTensor(3, size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, bl, _ := resized.At(b.Min.X+x, b.Min.Y+y).RGBA()
			t.Set(0, y, x, (float32(r)/65535-Mean[0])/Std[0])
			t.Set(1, y, x, (float32(g)/65535-Mean[1])/Std[1])
			t.Set(2, y, x, (float32(bl)/65535-Mean[2])/Std[2])
		}
	}
	return t
}

// Image reverses the normalization of t, yielding an RGB image of the
// network's view of the input.
func Image(t *model.Tensor) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, t.W, t.H))
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			var px [3]uint8
			for c := 0; c < 3 && c < t.C; c++ {
				v := t.At(c, y, x)*Std[c] + Mean[c]
				px[c] = unit8(v)
			}
			out.SetNRGBA(x, y, color.NRGBA{R: px[0], G: px[1], B: px[2], A: 0xff})
		}
	}
	return out
}

func unit8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(v*255 + 0.5)
}
