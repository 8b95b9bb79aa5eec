package detection

import (
	"image"
	"image/draw"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int
	Y int
}

// region is one 8-connected component of a binary mask.
type region struct {
	// bounds is the bounding box, max exclusive, in mask coordinates.
	bounds image.Rectangle

	// filled is the area enclosed by the region's outer boundary, holes included.
	filled int
}

// binaryMask flattens img into a row-major mask where bright pixels are true.
// The mask is indexed from (0,0) regardless of img's bounds.
func binaryMask(img image.Image) (mask []bool, width, height int) {
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()
	mask = make([]bool, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := img.At(x+b.Min.X, y+b.Min.Y).RGBA()
			mask[y*width+x] = r>>8 > 127
		}
	}
	return mask, width, height
}

// findRegions labels the connected components of mask.
//
// Components are returned in raster order of their first pixel, so an
// enclosing region always precedes the regions nested inside it.
func findRegions(mask []bool, width, height int) []region {
	labels := make([]int32, width*height)
	regions := make([]region, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !mask[i] || labels[i] != 0 {
				continue
			}
			id := int32(len(regions) + 1)
			bounds := floodFill(mask, labels, id, x, y, width, height)
			regions = append(regions, region{
				bounds: bounds,
				filled: filledArea(labels, id, bounds, width),
			})
		}
	}

	return regions
}

// floodFill labels the component containing (startX, startY) with id and
// returns its bounding box.
//
// Uses an explicit stack and 8-connectivity.
func floodFill(mask []bool, labels []int32, id int32, startX, startY, width, height int) image.Rectangle {
	minX, minY := startX, startY
	maxX, maxY := startX, startY

	stack := []Point{{X: startX, Y: startY}}
	labels[startY*width+startX] = id

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				j := ny*width + nx
				if mask[j] && labels[j] == 0 {
					labels[j] = id
					stack = append(stack, Point{X: nx, Y: ny})
				}
			}
		}
	}

	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// filledArea counts the pixels of bounds that are not reachable from the
// border of bounds without crossing region id. Background is 4-connected,
// the dual of the 8-connected foreground.
func filledArea(labels []int32, id int32, bounds image.Rectangle, width int) int {
	w, h := bounds.Dx(), bounds.Dy()
	outside := make([]bool, w*h)
	stack := make([]Point, 0)

	push := func(x, y int) {
		if x < 0 || x >= w || y < 0 || y >= h {
			return
		}
		k := y*w + x
		if outside[k] || labels[(y+bounds.Min.Y)*width+x+bounds.Min.X] == id {
			return
		}
		outside[k] = true
		stack = append(stack, Point{X: x, Y: y})
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	count := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++

		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}

	return w*h - count
}

// luminance copies a grayscale rendering into an 8-bit gray image with the
// same bounds.
func luminance(img image.Image) *image.Gray {
	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)
	return gray
}

// darkRatio returns the share of pixels in r darker than level.
func darkRatio(gray *image.Gray, r image.Rectangle, level uint8) float64 {
	r = r.Add(gray.Bounds().Min).Intersect(gray.Bounds())
	total := r.Dx() * r.Dy()
	if total == 0 {
		return 0
	}

	dark := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if gray.GrayAt(x, y).Y < level {
				dark++
			}
		}
	}
	return float64(dark) / float64(total)
}
