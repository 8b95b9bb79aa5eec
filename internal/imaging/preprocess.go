package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// minOCRSide is the smallest side length that is OCR'd without upscaling.
	minOCRSide = 50

	// targetOCRSide is the side length small crops are scaled up to.
	targetOCRSide = 100

	// contrastClip is the fraction of lightness samples ignored at each end
	// when stretching contrast.
	contrastClip = 0.01
)

// PrepareForOCR upscales tiny crops and stretches their lightness contrast.
//
// A crop whose width or height is below 50px is scaled so that both sides
// reach at least 100px. Contrast is then stretched on the L channel of
// CIE L*a*b*, leaving hue untouched, so pale print on a white tag becomes
// darker relative to the background.
func PrepareForOCR(img image.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var out *image.NRGBA
	if w > 0 && h > 0 && (w < minOCRSide || h < minOCRSide) {
		scale := math.Max(float64(targetOCRSide)/float64(h), float64(targetOCRSide)/float64(w))
		out = imaging.Resize(img, int(math.Round(float64(w)*scale)), int(math.Round(float64(h)*scale)), imaging.CatmullRom)
	} else {
		out = imaging.Clone(img)
	}

	StretchLightness(out)
	return out
}

// StretchLightness linearly maps the image's L* range onto [0, 1] in place.
// Images with (near) uniform lightness are left unchanged.
func StretchLightness(img *image.NRGBA) {
	b := img.Bounds()
	if b.Empty() {
		return
	}

	var hist [101]int
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(img.NRGBAAt(x, y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			hist[lightnessBin(l)]++
			total++
		}
	}
	if total == 0 {
		return
	}

	lo, hi := percentileBin(hist[:], total, contrastClip), percentileBin(hist[:], total, 1-contrastClip)
	if hi-lo < 2 {
		return
	}
	low, high := float64(lo)/100, float64(hi)/100

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.NRGBAAt(x, y)
			c, ok := colorful.MakeColor(px)
			if !ok {
				continue
			}
			l, a, bb := c.Lab()
			l = math.Min(1, math.Max(0, (l-low)/(high-low)))
			r, g, bl := colorful.Lab(l, a, bb).Clamped().RGB255()
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: bl, A: px.A})
		}
	}
}

func lightnessBin(l float64) int {
	i := int(math.Round(l * 100))
	if i < 0 {
		return 0
	}
	if i > 100 {
		return 100
	}
	return i
}

// percentileBin returns the first bin at which the cumulative count reaches q.
func percentileBin(hist []int, total int, q float64) int {
	target := int(math.Ceil(q * float64(total)))
	if target < 1 {
		target = 1
	}
	sum := 0
	for i, n := range hist {
		sum += n
		if sum >= target {
			return i
		}
	}
	return len(hist) - 1
}
