package detection

import (
	"context"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"

	"github.com/ironsheep/vision-vote/internal/imaging"
	"github.com/ironsheep/vision-vote/internal/rounds"
	"github.com/ironsheep/vision-vote/internal/vote"
)

const (
	// TagClass is the class reported for every contour detection.
	TagClass = "number_tag"

	// MethodContour is the detection method reported by TagDetector.
	MethodContour = "contour"

	// TagConfidence is the fixed confidence of a contour detection.
	TagConfidence = 0.85

	// MaxTags is the maximum number of tags returned per image.
	MaxTags = 3
)

const (
	whiteLevel  = 200
	closeRadius = 4

	minTagArea         = 1000
	maxTagAreaFraction = 0.5
	minTagWidth        = 50
	minTagHeight       = 30
	minAspect          = 1.5
	maxAspect          = 4.5

	darkLevel    = 120
	minDarkRatio = 0.1
	maxDarkRatio = 0.6
)

// TagDetector finds white number tags with dark print.
type TagDetector struct {
	cache *imaging.ImageCache
}

// NewTagDetector creates a detector that loads images through cache.
// A nil cache decodes the file on every call.
func NewTagDetector(cache *imaging.ImageCache) *TagDetector {
	return &TagDetector{cache: cache}
}

// Info describes the contour detector.
func (d *TagDetector) Info() rounds.BackendInfo {
	return rounds.BackendInfo{Available: true, Detail: "white tag contours"}
}

// Detect runs one detection pass on the image at imagePath.
// Tags below minConfidence are dropped; the frame is returned even when empty.
func (d *TagDetector) Detect(ctx context.Context, imagePath string, minConfidence float64) (*rounds.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := d.load(imagePath)
	if err != nil {
		return nil, err
	}

	found := FindTags(img)
	kept := make([]vote.RawDetection, 0, len(found))
	for _, det := range found {
		if det.Confidence >= minConfidence {
			kept = append(kept, det)
		}
	}

	b := img.Bounds()
	return &rounds.Frame{
		Detections:  kept,
		ImageWidth:  b.Dx(),
		ImageHeight: b.Dy(),
		Method:      MethodContour,
	}, nil
}

func (d *TagDetector) load(path string) (image.Image, error) {
	if d.cache != nil {
		return d.cache.Load(path)
	}
	img, err := imaging.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("tag detection: %w", err)
	}
	return img, nil
}

// FindTags returns up to MaxTags tag boxes in img, largest first.
// Box coordinates are relative to img's top-left corner.
func FindTags(img image.Image) []vote.RawDetection {
	gray := effect.Grayscale(img)

	white := segment.Threshold(gray, whiteLevel)
	closed := effect.Erode(effect.Dilate(white, closeRadius), closeRadius)

	luma := luminance(gray)

	mask, width, height := binaryMask(closed)
	maxArea := float64(width*height) * maxTagAreaFraction

	candidates := make([]vote.RawDetection, 0)
	for _, r := range findRegions(mask, width, height) {
		area := float64(r.filled)
		if area < minTagArea || area > maxArea {
			continue
		}

		bw, bh := r.bounds.Dx(), r.bounds.Dy()
		if bw < minTagWidth || bh < minTagHeight {
			continue
		}

		aspect := float64(bw) / float64(bh)
		if aspect <= minAspect || aspect >= maxAspect {
			continue
		}

		dark := darkRatio(luma, r.bounds, darkLevel)
		if dark <= minDarkRatio || dark >= maxDarkRatio {
			continue
		}

		candidates = append(candidates, vote.RawDetection{
			BBox: vote.BBox{
				float64(r.bounds.Min.X), float64(r.bounds.Min.Y),
				float64(r.bounds.Max.X), float64(r.bounds.Max.Y),
			},
			Confidence: TagConfidence,
			Class:      TagClass,
		})
	}

	merged := mergeOverlapping(candidates)
	if len(merged) > MaxTags {
		merged = merged[:MaxTags]
	}
	return merged
}
