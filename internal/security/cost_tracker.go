package security

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const tokensPerMillion = 1_000_000.0

// Pricing is the model price in USD per million tokens.
type Pricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// CostTracker enforces a daily token budget per API key for the chat relay.
type CostTracker struct {
	maxTokensPerDay int64
	pricing         Pricing

	mu    sync.Mutex
	day   string
	spent map[string]int64
	now   func() time.Time
}

// NewCostTracker disables the budget when maxTokensPerDay is not positive.
func NewCostTracker(maxTokensPerDay int64, pricing Pricing) *CostTracker {
	return &CostTracker{
		maxTokensPerDay: maxTokensPerDay,
		pricing:         pricing,
		spent:           make(map[string]int64),
		now:             time.Now,
	}
}

// CheckLimits reports whether apiKey may spend more tokens today.
func (ct *CostTracker) CheckLimits(apiKey string) (bool, string) {
	if ct.maxTokensPerDay <= 0 {
		return true, ""
	}
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.rollover()
	used := ct.spent[hashStr(apiKey)]
	if used < ct.maxTokensPerDay {
		return true, ""
	}
	return false, fmt.Sprintf("daily token budget exhausted: used %d of %d", used, ct.maxTokensPerDay)
}

// Record adds usage for apiKey and logs the cost with hashed identifiers.
func (ct *CostTracker) Record(prompt, apiKey string, inputTokens, outputTokens int64, durationMs int64) {
	keyHash := hashStr(apiKey)
	ct.mu.Lock()
	ct.rollover()
	ct.spent[keyHash] += inputTokens + outputTokens
	ct.mu.Unlock()

	costUSD := float64(inputTokens)/tokensPerMillion*ct.pricing.InputPerMTok +
		float64(outputTokens)/tokensPerMillion*ct.pricing.OutputPerMTok

	log.Info().
		Str("event", "chat_cost").
		Str("prompt_hash", hashStr(prompt)[:16]).
		Str("api_key_hash", keyHash[:16]).
		Int64("input_tokens", inputTokens).
		Int64("output_tokens", outputTokens).
		Float64("cost_usd", costUSD).
		Int64("duration_ms", durationMs).
		Msgf("Chat cost: %d+%d tokens ($%.4f) | Duration: %dms", inputTokens, outputTokens, costUSD, durationMs)
}

func (ct *CostTracker) rollover() {
	day := ct.now().UTC().Format(time.DateOnly)
	if day != ct.day {
		ct.day = day
		clear(ct.spent)
	}
}

// HashIdentifier returns the short audit hash of a secret identifier.
func HashIdentifier(s string) string {
	if s == "" {
		return ""
	}
	return hashStr(s)[:16]
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
