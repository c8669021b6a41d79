package repository

import "context"

// AIRepository generates briefing text from an assembled prompt.
type AIRepository interface {
	// GenerateBriefing sends the prompt to the model and returns the raw text.
	GenerateBriefing(ctx context.Context, prompt string) (string, error)
	// ModelName reports the configured model identifier for audit rows.
	ModelName() string
}
