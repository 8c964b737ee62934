// Package ocr provides the OCR engine collaborators that turn a timetable image into text.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
)

// Engine recognizes text in one image.
type Engine interface {
	Recognize(ctx context.Context, img imagedata.Image) (Recognition, error)
}

// Recognition is the best-effort text recovered from an image.
type Recognition struct {
	Text       string
	Confidence float32
	Method     string // "tesseract" | "remote"
	Duration   time.Duration
	Warnings   []string
}

type Config struct {
	Engine string // "tesseract" | "remote" | "none"

	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	PSM           int // 6 suits a uniform block such as a timetable grid
	OEM           int // 1 = LSTM; 0 leaves the tesseract default

	EnableTSVConfidence bool
	WorkDir             string // temp files for tesseract input

	RemoteURL     string
	RemoteToken   string
	RemoteLocale  string
	RemoteTimeout time.Duration
}

// New builds the engine selected by cfg.Engine. "none" returns a nil Engine, which the
// pipeline treats as an unavailable OCR stage.
func New(cfg Config, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Engine {
	case "", "tesseract":
		return NewTesseract(cfg, nil, logger), nil
	case "remote":
		if cfg.RemoteURL == "" {
			return nil, fmt.Errorf("remote ocr: url is required")
		}
		timeout := cfg.RemoteTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		return NewRemote(cfg, &http.Client{Timeout: timeout}, logger), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
}
