package systems

import (
	"image"
	"image/color"
	"testing"

	"github.com/jermochi/Hygin/pkg/mask"
)

// buildTestMask 40x40 的遮罩，只覆盖上半部分
func buildTestMask(t *testing.T) *mask.PixelMask {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	m, err := mask.Build(img, mask.Criteria{Mode: mask.ModeAlpha, Stride: 2})
	if err != nil {
		t.Fatalf("failed to build test mask: %v", err)
	}
	return m
}
