package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-news-briefer/internal/config"
	"golang-news-briefer/pkg/logger"

	"golang.org/x/time/rate"
)

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumCtx      int     `json:"num_ctx"`
}

type ollamaGenerateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	TotalTime int64  `json:"total_duration"`
}

// ollamaAIRepository is an implementation of AIRepository that talks to a local Ollama server.
type ollamaAIRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewOllamaAIRepository creates a new instance of ollamaAIRepository.
func NewOllamaAIRepository(cfg *config.Config, log *logger.Logger) AIRepository {
	var requestLimiter *rate.Limiter
	if cfg.Ollama.MaxRequestPerMinute > 0 {
		secondsPerRequest := time.Minute / time.Duration(cfg.Ollama.MaxRequestPerMinute)
		requestLimiter = rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	}

	return &ollamaAIRepository{
		client: &http.Client{
			Timeout: cfg.Ollama.Timeout,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

func (r *ollamaAIRepository) ModelName() string {
	return r.cfg.Ollama.Model
}

// GenerateBriefing sends a single non-streaming generate request. There are no
// retries, a failed generation surfaces to the caller.
func (r *ollamaAIRepository) GenerateBriefing(ctx context.Context, prompt string) (string, error) {
	if r.requestLimiter != nil {
		if err := r.requestLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("failed to wait for request limit: %w", err)
		}
	}

	payload := ollamaGenerateRequest{
		Model:  r.cfg.Ollama.Model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: r.cfg.Ollama.Temperature,
			TopP:        r.cfg.Ollama.TopP,
			NumCtx:      r.cfg.Ollama.ContextSize,
		},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/api/generate", r.cfg.Ollama.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Failed to send request to Ollama", logger.ErrorField(err), logger.StringField("model", r.cfg.Ollama.Model))
		return "", fmt.Errorf("failed to send request to Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from Ollama", logger.IntField("status_code", resp.StatusCode))
		return "", fmt.Errorf("received non-OK response from Ollama: %d - %s", resp.StatusCode, string(body))
	}

	var generateResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generateResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	r.logger.Debug("Ollama generation complete",
		logger.StringField("model", generateResp.Model),
		logger.DurationField("elapsed", time.Since(start)),
		logger.IntField("response_chars", len(generateResp.Response)),
	)

	return generateResp.Response, nil
}
