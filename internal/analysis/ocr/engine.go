package ocr

import (
	"context"
	"fmt"
	"image"
	_ "image/png" // page renders are PNG
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

// referenceDPI is the cheap first render used only to measure page
// geometry for adaptive DPI selection.
const referenceDPI = 72

var _ driven.PageRenderer = (*PopplerRenderer)(nil)

// PopplerRenderer rasterises PDF pages with pdftoppm.
type PopplerRenderer struct {
	// Binary overrides the pdftoppm path, empty means $PATH lookup.
	Binary string
}

func (r *PopplerRenderer) binary() string {
	if r.Binary != "" {
		return r.Binary
	}
	return "pdftoppm"
}

// PageSize renders the first page at the reference DPI and reports its
// pixel dimensions.
func (r *PopplerRenderer) PageSize(ctx context.Context, pdfPath string) (int, int, error) {
	paths, err := r.Render(ctx, pdfPath, referenceDPI, 1)
	if err != nil {
		return 0, 0, err
	}
	defer removeAll(paths)
	if len(paths) == 0 {
		return 0, 0, fmt.Errorf("no pages rendered from %s", pdfPath)
	}
	return imageSize(paths[0])
}

// Render rasterises up to maxPages pages at dpi into a temp directory
// and returns the PNG paths in page order.
func (r *PopplerRenderer) Render(ctx context.Context, pdfPath string, dpi, maxPages int) ([]string, error) {
	dir, err := os.MkdirTemp("", "papertrail-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("creating render directory: %w", err)
	}

	args := []string{"-png", "-r", strconv.Itoa(dpi), "-f", "1"}
	if maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(maxPages))
	}
	args = append(args, pdfPath, filepath.Join(dir, "page"))

	cmd := exec.CommandContext(ctx, r.binary(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("pdftoppm: %v: %s", err, strings.TrimSpace(string(out)))
	}

	matches, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order
	sort.Strings(matches)
	return matches, nil
}

var _ driven.OCREngine = (*TesseractEngine)(nil)

// TesseractEngine recognises page text with the tesseract CLI, reading
// per-word confidence from its TSV output.
type TesseractEngine struct {
	// Binary overrides the tesseract path, empty means $PATH lookup.
	Binary string

	// Languages is the tesseract language spec, e.g. "eng".
	Languages string
}

func (e *TesseractEngine) binary() string {
	if e.Binary != "" {
		return e.Binary
	}
	return "tesseract"
}

// Available reports whether tesseract is installed.
func (e *TesseractEngine) Available() bool {
	_, err := exec.LookPath(e.binary())
	return err == nil
}

// Recognize OCRs one page image and returns the text with mean
// per-word confidence.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, float64, error) {
	args := []string{imagePath, "stdout"}
	if e.Languages != "" {
		args = append(args, "-l", e.Languages)
	}
	args = append(args, "tsv")

	cmd := exec.CommandContext(ctx, e.binary(), args...)
	out, err := cmd.Output()
	if err != nil {
		return "", 0, fmt.Errorf("tesseract: %w", err)
	}
	text, confidence := parseTSV(string(out))
	return text, confidence, nil
}

// parseTSV extracts words and confidences from tesseract TSV output.
// Words with confidence -1 are layout artifacts and are dropped.
func parseTSV(tsv string) (string, float64) {
	var words []string
	var confSum float64
	var confCount int

	lines := strings.Split(tsv, "\n")
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 12 {
			continue
		}
		word := strings.TrimSpace(fields[11])
		if word == "" {
			continue
		}
		conf, err := strconv.ParseFloat(fields[10], 64)
		if err != nil || conf <= 0 {
			continue
		}
		words = append(words, word)
		confSum += conf
		confCount++
	}

	if confCount == 0 {
		return "", 0
	}
	return strings.Join(words, " "), confSum / float64(confCount)
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("reading page dimensions: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
