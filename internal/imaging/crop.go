package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// TagPadding is the margin added around a detected tag before OCR.
const TagPadding = 5

// PadBox grows box by padding on every side and clamps it to bounds.
// The result is empty when box lies entirely outside bounds.
func PadBox(box [4]int, padding int, bounds image.Rectangle) image.Rectangle {
	r := image.Rect(box[0]-padding, box[1]-padding, box[2]+padding, box[3]+padding)
	return r.Intersect(bounds)
}

// CropPadded extracts box plus padding from img.
//
// The returned image has its origin at (0,0). The second return value is the
// region actually cropped in img's coordinates, after clamping. ok is false
// when the clamped region is empty.
func CropPadded(img image.Image, box [4]int, padding int) (cropped *image.NRGBA, region image.Rectangle, ok bool) {
	region = PadBox(box, padding, img.Bounds())
	if region.Empty() {
		return nil, region, false
	}
	return imaging.Crop(img, region), region, true
}
