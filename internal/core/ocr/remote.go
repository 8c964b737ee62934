package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
)

// RemoteRequest is the body posted to an OCR service.
type RemoteRequest struct {
	Image  string `json:"image"` // data URL
	Locale string `json:"locale,omitempty"`
}

// RemoteResponse is the body an OCR service returns.
type RemoteResponse struct {
	RawText    string  `json:"raw_answer_text"`
	Confidence float64 `json:"confidence,omitempty"` // 0..1
}

// Remote delegates recognition to an HTTP OCR service.
type Remote struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewRemote(cfg Config, client *http.Client, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Remote{cfg: cfg, client: client, logger: logger}
}

func (r *Remote) Recognize(ctx context.Context, img imagedata.Image) (Recognition, error) {
	start := time.Now()
	headers := map[string]string{}
	if r.cfg.RemoteToken != "" {
		headers["Authorization"] = "Bearer " + r.cfg.RemoteToken
	}

	raw, _, err := sendJSON(ctx, r.client, r.cfg.RemoteURL, RemoteRequest{
		Image:  img.DataURL(),
		Locale: r.cfg.RemoteLocale,
	}, headers, r.logger)
	if err != nil {
		return Recognition{Method: "remote"}, fmt.Errorf("remote ocr: %w", err)
	}

	var resp RemoteResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Recognition{Method: "remote"}, fmt.Errorf("remote ocr: decode response: %w", err)
	}

	txt := Normalize(resp.RawText)
	conf := float32(resp.Confidence)
	if conf <= 0 {
		conf = heuristicConfidence(txt)
	}
	return Recognition{
		Text:       txt,
		Confidence: conf,
		Method:     "remote",
		Duration:   time.Since(start),
	}, nil
}
