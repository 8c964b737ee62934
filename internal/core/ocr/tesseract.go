package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
)

// Tesseract runs the tesseract CLI against a temp copy of the image.
type Tesseract struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewTesseract returns a tesseract engine. A nil runner executes real commands.
func NewTesseract(cfg Config, runner Runner, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	return &Tesseract{cfg: cfg, runner: runner, logger: logger}
}

func (t *Tesseract) Recognize(ctx context.Context, img imagedata.Image) (Recognition, error) {
	start := time.Now()

	path, cleanup, err := t.writeTemp(img)
	if err != nil {
		return Recognition{Method: "tesseract"}, err
	}
	defer cleanup()

	txt, warn, err := t.recognizeText(ctx, path)
	if err != nil {
		t.logger.Warn("ocr.tesseract.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Recognition{Method: "tesseract", Warnings: warn}, err
	}
	txt = Normalize(txt)

	var ocrConf float32
	if t.cfg.EnableTSVConfidence {
		if c, w, err2 := t.tsvConfidence(ctx, path); err2 == nil {
			ocrConf = c
			warn = append(warn, w...)
		} else {
			warn = append(warn, err2.Error())
		}
	}
	heurConf := heuristicConfidence(txt)

	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	t.logger.Info("ocr.tesseract.ok",
		"chars", len(txt),
		"confidence", conf,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Recognition{
		Text:       txt,
		Confidence: conf,
		Method:     "tesseract",
		Duration:   time.Since(start),
		Warnings:   warn,
	}, nil
}

func (t *Tesseract) writeTemp(img imagedata.Image) (string, func(), error) {
	f, err := os.CreateTemp(t.cfg.WorkDir, "timetable-*."+img.Ext())
	if err != nil {
		return "", nil, fmt.Errorf("create temp image: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(img.Data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp image: %w", err)
	}
	return f.Name(), cleanup, nil
}

func (t *Tesseract) baseArgs(path string) []string {
	// tesseract <file> stdout -l <lang> [--psm N] [--oem N] [--tessdata-dir D]
	args := []string{path, "stdout", "-l", t.cfg.TesseractLang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

func (t *Tesseract) recognizeText(ctx context.Context, path string) (string, []string, error) {
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, t.baseArgs(path)...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}

// tsvConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (t *Tesseract) tsvConfidence(ctx context.Context, path string) (float32, []string, error) {
	args := append(t.baseArgs(path), "tsv")
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return 0, []string{string(errb)}, fmt.Errorf("tesseract TSV: %w", err)
	}
	return meanTSVConfidence(string(out)), nil, nil
}

func meanTSVConfidence(tsv string) float32 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil && v >= 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}
