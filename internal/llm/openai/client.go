package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"github.com/joseph-ayodele/timetable-import/internal/entity"
	"github.com/joseph-ayodele/timetable-import/internal/llm"
)

// ExtractEntries implements llm.VisionExtractor using chat completions with an inline image.
func (c *Client) ExtractEntries(ctx context.Context, req llm.VisionRequest) ([]entity.ExtractedEntry, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.vision.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"image_bytes", len(req.Image.Data),
		"mime", req.Image.MIME,
		"enhance", req.Enhance,
	)

	params := sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(c.cfg.Model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(llm.BuildSystemPrompt(req)),
			sdk.UserMessage([]sdk.ChatCompletionContentPartUnionParam{
				sdk.TextContentPart(llm.BuildUserPrompt()),
				sdk.ImageContentPart(sdk.ChatCompletionContentPartImageImageURLParam{
					URL: req.Image.DataURL(),
				}),
			}),
		},
		ResponseFormat: sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = sdk.Float(float64(c.cfg.Temperature))
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		attrs := []any{"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds()}
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			attrs = append(attrs, "status", apiErr.StatusCode)
		}
		c.logger.Error("llm.vision.http_error", attrs...)
		return nil, nil, fmt.Errorf("vision request: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("llm.vision.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, fmt.Errorf("no choices in openai response")
	}

	content := []byte(strings.TrimSpace(resp.Choices[0].Message.Content))
	entries := llm.ParseEntries(content, c.logger)

	c.logger.Info("llm.vision.ok",
		"req_id", rid,
		"entries", len(entries),
		"content_bytes", len(content),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entries, content, nil
}
