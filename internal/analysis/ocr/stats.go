package ocr

import (
	"image"
	"math"
	"os"
)

// Grayscale bands used to pick a preprocessing strategy. Dark, washed
// out and flat pages all want the contrast recipe; heavy speckle wants
// the median filter.
const (
	darkMeanMax       = 80.0
	brightMeanMin     = 180.0
	lowContrastStdDev = 30.0
	noisyStdDev       = 90.0
)

// PageStats hold the grayscale statistics of a rendered page.
type PageStats struct {
	Mean   float64
	StdDev float64
}

// AnalyzePage computes the grayscale mean and standard deviation.
func AnalyzePage(img *image.Gray) PageStats {
	n := len(img.Pix)
	if n == 0 {
		return PageStats{}
	}
	var sum float64
	for _, p := range img.Pix {
		sum += float64(p)
	}
	mean := sum / float64(n)

	var sq float64
	for _, p := range img.Pix {
		d := float64(p) - mean
		sq += d * d
	}
	return PageStats{Mean: mean, StdDev: math.Sqrt(sq / float64(n))}
}

// Strategy picks the preprocessing recipe the statistics call for.
func (s PageStats) Strategy() Strategy {
	switch {
	case s.Mean < darkMeanMax, s.Mean > brightMeanMin, s.StdDev < lowContrastStdDev:
		return StrategyHighContrast
	case s.StdDev > noisyStdDev:
		return StrategyDenoise
	default:
		return StrategyDefault
	}
}

// preferredStrategy inspects the first rendered page and picks the
// recipe its statistics call for. Unreadable pages fall back to the
// default recipe.
func preferredStrategy(pagePath string) Strategy {
	f, err := os.Open(pagePath)
	if err != nil {
		return StrategyDefault
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return StrategyDefault
	}
	return AnalyzePage(toGray(img)).Strategy()
}
