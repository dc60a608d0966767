package ocr

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func grayFill(values ...byte) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = values[i%len(values)]
	}
	return img
}

func TestAnalyzePage(t *testing.T) {
	stats := AnalyzePage(grayFill(100, 180))
	assert.InDelta(t, 140, stats.Mean, 0.01)
	assert.InDelta(t, 40, stats.StdDev, 0.01)
}

func TestStatsPickStrategy(t *testing.T) {
	tests := []struct {
		name string
		img  *image.Gray
		want Strategy
	}{
		{"dark page", grayFill(20, 60), StrategyHighContrast},
		{"washed out page", grayFill(200, 240), StrategyHighContrast},
		{"flat low-contrast page", grayFill(120, 130), StrategyHighContrast},
		{"speckled page", grayFill(0, 255), StrategyDenoise},
		{"ordinary text page", grayFill(100, 180), StrategyDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzePage(tt.img).Strategy())
		})
	}
}

func TestAnalyzePageEmpty(t *testing.T) {
	stats := AnalyzePage(image.NewGray(image.Rect(0, 0, 0, 0)))
	assert.Zero(t, stats.Mean)
	assert.Zero(t, stats.StdDev)
}
