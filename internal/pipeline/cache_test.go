package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/vision-vote/internal/detection"
	"github.com/ironsheep/vision-vote/internal/imaging"
)

// writeFrame encodes a dark frame to path, optionally with one white tag
// carrying three black bars.
func writeFrame(t *testing.T, path string, withTag bool) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	fill := func(r image.Rectangle, c color.Color) {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Set(x, y, c)
			}
		}
	}
	fill(img.Bounds(), color.RGBA{60, 60, 60, 255})
	if withTag {
		fill(image.Rect(40, 50, 190, 110), color.White)
		for _, x := range []int{65, 102, 139} {
			fill(image.Rect(x, 62, x+15, 98), color.Black)
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func newCachedService(cache *imaging.ImageCache) *Service {
	s := NewService(Defaults{})
	s.SetImageCache(cache)
	s.RegisterDetector("contour", detection.NewTagDetector(cache))
	return s
}

func TestDetect_RewrittenFileIsDecodedAgain(t *testing.T) {
	cache := imaging.NewImageCache()
	s := newCachedService(cache)
	path := filepath.Join(t.TempDir(), "frame.png")

	writeFrame(t, path, true)
	resp, err := s.Detect(context.Background(), path, DetectOptions{Confidence: 0.5})
	require.NoError(t, err)
	require.Len(t, resp.Detections, 1)
	require.Equal(t, "contour", resp.DetectionMethod)
	require.Equal(t, ImageInfo{Width: 300, Height: 200}, resp.ImageInfo)
	require.Zero(t, cache.Len(), "request should release its image")

	writeFrame(t, path, false)
	resp, err = s.Detect(context.Background(), path, DetectOptions{Confidence: 0.5})
	require.NoError(t, err)
	require.Empty(t, resp.Detections, "second request must see the new pixels")
	require.Zero(t, cache.Len())
}

func TestDetect_VoteRoundsShareOneDecode(t *testing.T) {
	cache := imaging.NewImageCache()
	s := newCachedService(cache)
	path := filepath.Join(t.TempDir(), "frame.png")
	writeFrame(t, path, true)

	resp, err := s.Detect(context.Background(), path, DetectOptions{
		Confidence:    0.5,
		UseVote:       true,
		VoteRounds:    3,
		VoteThreshold: 0.6,
	})
	require.NoError(t, err)
	require.Len(t, resp.Detections, 1)
	require.Equal(t, 3, resp.Detections[0].VoteCount)
	require.Equal(t, 3, resp.VoteInfo.UsableRounds)
	require.Zero(t, cache.Len())
}

func TestDetect_StaleEntryDroppedOnEntry(t *testing.T) {
	cache := imaging.NewImageCache()
	path := filepath.Join(t.TempDir(), "frame.png")

	// Another caller left the tagged frame cached before the file changed.
	writeFrame(t, path, true)
	_, err := cache.Load(path)
	require.NoError(t, err)
	writeFrame(t, path, false)

	s := newCachedService(cache)
	resp, err := s.Detect(context.Background(), path, DetectOptions{Confidence: 0.5})
	require.NoError(t, err)
	require.Empty(t, resp.Detections)
}
