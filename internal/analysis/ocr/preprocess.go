package ocr

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
)

// Strategy names a preprocessing recipe applied before recognition.
type Strategy string

const (
	// StrategyDefault applies moderate contrast enhancement.
	StrategyDefault Strategy = "default"

	// StrategyHighContrast applies aggressive contrast plus sharpening,
	// for faded typewritten pages.
	StrategyHighContrast Strategy = "high_contrast"

	// StrategyDenoise applies a median filter plus mild contrast, for
	// noisy photocopies.
	StrategyDenoise Strategy = "denoise"
)

// Strategies is the multi-pass sweep order. The runner tries the
// stats-preferred strategy first and falls back to the rest of this
// list while confidence stays below the early-exit bar.
var Strategies = []Strategy{StrategyDefault, StrategyHighContrast, StrategyDenoise}

// PreprocessFile reads a rendered page image, applies the strategy and
// writes the result next to the input. The caller removes both files.
func PreprocessFile(imagePath string, strategy Strategy) (string, error) {
	in, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("opening page image: %w", err)
	}
	src, _, err := image.Decode(in)
	in.Close()
	if err != nil {
		return "", fmt.Errorf("decoding page image: %w", err)
	}

	processed := Preprocess(toGray(src), strategy)

	outPath := filepath.Join(filepath.Dir(imagePath),
		fmt.Sprintf("%s.%s.png", filepath.Base(imagePath), strategy))
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating processed image: %w", err)
	}
	if err := png.Encode(out, processed); err != nil {
		out.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("encoding processed image: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return "", err
	}
	return outPath, nil
}

// Preprocess applies one strategy to a grayscale page.
func Preprocess(img *image.Gray, strategy Strategy) *image.Gray {
	switch strategy {
	case StrategyHighContrast:
		return sharpen(adjustContrast(img, 2.0))
	case StrategyDenoise:
		return adjustContrast(medianFilter(img, 3), 1.3)
	default:
		return adjustContrast(img, 1.5)
	}
}

// toGray converts any decoded image to 8-bit grayscale.
func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	bounds := src.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(src.At(x, y)))
		}
	}
	return gray
}

// adjustContrast scales pixel distance from mid-gray by factor.
func adjustContrast(img *image.Gray, factor float64) *image.Gray {
	out := image.NewGray(img.Bounds())
	for i, p := range img.Pix {
		out.Pix[i] = clampByte(128 + (float64(p)-128)*factor)
	}
	return out
}

// sharpen applies a 3x3 unsharp kernel.
func sharpen(img *image.Gray) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	copy(out.Pix, img.Pix)

	w, h := bounds.Dx(), bounds.Dy()
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			center := float64(img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			sum := 5*center -
				float64(img.GrayAt(bounds.Min.X+x-1, bounds.Min.Y+y).Y) -
				float64(img.GrayAt(bounds.Min.X+x+1, bounds.Min.Y+y).Y) -
				float64(img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y-1).Y) -
				float64(img.GrayAt(bounds.Min.X+x, bounds.Min.Y+y+1).Y)
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: clampByte(sum)})
		}
	}
	return out
}

// medianFilter replaces each pixel with the median of its size×size
// neighbourhood.
func medianFilter(img *image.Gray, size int) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	copy(out.Pix, img.Pix)

	radius := size / 2
	w, h := bounds.Dx(), bounds.Dy()
	window := make([]byte, 0, size*size)

	for y := radius; y < h-radius; y++ {
		for x := radius; x < w-radius; x++ {
			window = window[:0]
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					window = append(window, img.GrayAt(bounds.Min.X+x+dx, bounds.Min.Y+y+dy).Y)
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, color.Gray{Y: window[len(window)/2]})
		}
	}
	return out
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
