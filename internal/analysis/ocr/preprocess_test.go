package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayImage(w, h int, fill byte) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = fill
	}
	return img
}

func TestAdjustContrastSpreadsAroundMidGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 100})
	img.SetGray(1, 0, color.Gray{Y: 160})

	out := adjustContrast(img, 2.0)

	// 128 + (100-128)*2 = 72, 128 + (160-128)*2 = 192
	assert.Equal(t, byte(72), out.GrayAt(0, 0).Y)
	assert.Equal(t, byte(192), out.GrayAt(1, 0).Y)
}

func TestAdjustContrastClamps(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(1, 0, color.Gray{Y: 255})

	out := adjustContrast(img, 3.0)
	assert.Equal(t, byte(0), out.GrayAt(0, 0).Y)
	assert.Equal(t, byte(255), out.GrayAt(1, 0).Y)
}

func TestMedianFilterRemovesSpeckle(t *testing.T) {
	img := grayImage(5, 5, 255)
	// single dark speckle in the middle of a white page
	img.SetGray(2, 2, color.Gray{Y: 0})

	out := medianFilter(img, 3)
	assert.Equal(t, byte(255), out.GrayAt(2, 2).Y)
}

func TestPreprocessStrategiesDiffer(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = byte(64 + (i%8)*16)
	}

	def := Preprocess(img, StrategyDefault)
	hc := Preprocess(img, StrategyHighContrast)

	require.Equal(t, img.Bounds(), def.Bounds())
	assert.NotEqual(t, def.Pix, hc.Pix)
}
