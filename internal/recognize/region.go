package recognize

import (
	"image"

	"golang.org/x/image/draw"
)

// Region is a cropped, normalized pixel buffer for one detected face.
// Pix holds Height*Width*3 interleaved RGB values on a 0-255 scale,
// row-major from the top-left corner.
type Region struct {
	Width  int
	Height int
	Pix    []float32
}

// ZeroRegion returns the canonical zero-filled padding region.
func ZeroRegion(width, height int) Region {
	return Region{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*3),
	}
}

// valid reports whether the pixel buffer length matches the declared shape.
func (r Region) valid() bool {
	return r.Width > 0 && r.Height > 0 && len(r.Pix) == r.Width*r.Height*3
}

// Resize scales the region to the given dimensions. Returns the receiver
// unchanged when the shape already matches.
func (r Region) Resize(width, height int) Region {
	if r.Width == width && r.Height == height {
		return r
	}

	src := r.toImage()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	return regionFromRGBA(dst)
}

// RegionFromImage crops the face bounding box out of img and scales it to
// width x height. An empty bbox selects the whole image. The crop rectangle
// is clamped to the image bounds.
func RegionFromImage(img image.Image, bbox []float64, width, height int) Region {
	bounds := img.Bounds()
	crop := bounds
	if len(bbox) == 4 {
		crop = image.Rect(int(bbox[0]), int(bbox[1]), int(bbox[2]), int(bbox[3]))
		crop = crop.Intersect(bounds)
		if crop.Empty() {
			crop = bounds
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	return regionFromRGBA(dst)
}

// RegionFromFace crops the face's bounding box out of img.
func RegionFromFace(img image.Image, face Face, width, height int) Region {
	return RegionFromImage(img, face.BBox, width, height)
}

func (r Region) toImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			i := (y*r.Width + x) * 3
			o := img.PixOffset(x, y)
			img.Pix[o+0] = clampByte(r.Pix[i+0])
			img.Pix[o+1] = clampByte(r.Pix[i+1])
			img.Pix[o+2] = clampByte(r.Pix[i+2])
			img.Pix[o+3] = 0xff
		}
	}
	return img
}

func regionFromRGBA(img *image.RGBA) Region {
	b := img.Bounds()
	r := Region{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]float32, b.Dx()*b.Dy()*3),
	}
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			i := (y*r.Width + x) * 3
			o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			r.Pix[i+0] = float32(img.Pix[o+0])
			r.Pix[i+1] = float32(img.Pix[o+1])
			r.Pix[i+2] = float32(img.Pix[o+2])
		}
	}
	return r
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
