package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/vision-vote/internal/detection"
	"github.com/ironsheep/vision-vote/internal/imaging"
	"github.com/ironsheep/vision-vote/internal/vote"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

const digitWhitelist = "0123456789"

// TesseractRecognizer reads number codes with the Tesseract OCR engine.
type TesseractRecognizer struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// TagCrop restricts OCR to the largest detected number tag.
	TagCrop bool

	// Preprocess upscales small crops and stretches their contrast.
	Preprocess bool

	cache *imaging.ImageCache
}

// NewTesseractRecognizer returns a recognizer with tag cropping and
// preprocessing enabled. Images are loaded through cache when non-nil.
func NewTesseractRecognizer(cache *imaging.ImageCache) *TesseractRecognizer {
	return &TesseractRecognizer{
		Language:   DefaultLanguage,
		TagCrop:    true,
		Preprocess: true,
		cache:      cache,
	}
}

// Recognize runs one OCR pass on the image at imagePath.
//
// The result has an empty Value when no digits were read. Confidence is the
// mean Tesseract word confidence scaled to [0, 1].
func (r *TesseractRecognizer) Recognize(ctx context.Context, imagePath string) (vote.RawResult, error) {
	if err := ctx.Err(); err != nil {
		return vote.RawResult{}, err
	}

	img, err := r.load(imagePath)
	if err != nil {
		return vote.RawResult{}, err
	}

	return r.RecognizeImage(img)
}

// RecognizeImage runs one OCR pass on an image already in memory.
func (r *TesseractRecognizer) RecognizeImage(img image.Image) (vote.RawResult, error) {
	target := img
	if r.TagCrop {
		if tags := detection.FindTags(img); len(tags) > 0 {
			box := tags[0].BBox.Rounded()
			b := img.Bounds()
			box = [4]int{box[0] + b.Min.X, box[1] + b.Min.Y, box[2] + b.Min.X, box[3] + b.Min.Y}
			if cropped, _, ok := imaging.CropPadded(img, box, imaging.TagPadding); ok {
				target = cropped
			}
		}
	}
	if r.Preprocess {
		target = imaging.PrepareForOCR(target)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, target); err != nil {
		return vote.RawResult{}, fmt.Errorf("failed to encode OCR input: %w", err)
	}

	words, err := r.readWords(buf.Bytes())
	if err != nil {
		return vote.RawResult{}, err
	}

	return resultFromWords(words), nil
}

// word is one Tesseract word with its confidence on a 0-100 scale.
type word struct {
	text       string
	confidence float64
}

func (r *TesseractRecognizer) readWords(pngData []byte) ([]word, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language()); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetWhitelist(digitWhitelist); err != nil {
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetImageFromBytes(pngData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]word, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		words = append(words, word{text: text, confidence: box.Confidence})
	}
	return words, nil
}

// resultFromWords joins the words, extracts a code and averages confidences.
func resultFromWords(words []word) vote.RawResult {
	if len(words) == 0 {
		return vote.RawResult{}
	}

	texts := make([]string, len(words))
	sum := 0.0
	for i, w := range words {
		texts[i] = w.text
		sum += w.confidence
	}

	code := ExtractNumberCode(strings.Join(texts, " "))
	if code == "" {
		return vote.RawResult{}
	}

	conf := sum / float64(len(words)) / 100
	return vote.RawResult{Value: code, Confidence: math.Min(1, math.Max(0, conf))}
}

func (r *TesseractRecognizer) load(path string) (image.Image, error) {
	if r.cache != nil {
		return r.cache.Load(path)
	}
	return imaging.Decode(path)
}

func (r *TesseractRecognizer) language() string {
	if r.Language == "" {
		return DefaultLanguage
	}
	return r.Language
}
