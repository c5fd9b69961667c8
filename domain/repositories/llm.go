package repositories

import "context"

// LanguageModel abstracts any chat/LLM provider.
type LanguageModel interface {
	// Complete sends a system instruction and a user prompt, asking the
	// provider for a single JSON object, and returns the raw text of the
	// reply. Callers parse the JSON themselves; a parse failure is their
	// malformed-response condition, not the provider's.
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}
