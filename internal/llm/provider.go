// Package llm generates optional natural-language digests of lead pack
// results. Digests are produced after scoring and filtering are complete and
// never feed back into either.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/leadradar/internal/model"
)

// Provider defines the interface for digest backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Digest generates a short summary of a pack build
	Digest(ctx context.Context, req DigestRequest) (*DigestResponse, error)
}

// DigestRequest contains the input for a pack digest
type DigestRequest struct {
	// Packs is the finished pack build to summarize
	Packs []model.LeadPack

	// GroupBy is the dimension the packs were grouped on
	GroupBy string

	// Model overrides the configured model when set
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// DigestResponse contains the generated digest
type DigestResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds digest provider configuration
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// NewProvider creates a digest provider from configuration. An empty provider
// name disables digests and returns nil, nil.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown digest provider: %s (supported: openai)", cfg.Provider)
	}
}

// BuildPrompt renders the pack build into the default digest prompt. Only the
// already-computed labels, totals and top scores go in; the model is asked to
// describe the distribution, never to re-rank it.
func BuildPrompt(packs []model.LeadPack, groupBy string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are summarizing real-estate lead packs for an agent. Packs group scored
properties by %s and are already ranked; do not invent rankings, scores, or
properties beyond the data below.

Packs (label, total matches, top listing score):
`, groupBy)

	for i, p := range packs {
		if i >= 10 {
			fmt.Fprintf(&b, "... and %d more packs\n", len(packs)-10)
			break
		}
		top := 0.0
		if len(p.TopProperties) > 0 {
			top = p.TopProperties[0].ListingScore
		}
		fmt.Fprintf(&b, "- %s: %d matches, top score %.2f\n", p.Label, p.Total, top)
	}

	b.WriteString("\nIn 2-3 sentences, describe where the strongest leads concentrate and any notable gaps.")
	return b.String()
}
