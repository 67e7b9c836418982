package embedders

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/vietbot-labs/ragcore/config"
)

// ============================================================================
// HASH EMBEDDER
// ============================================================================

// hashGramRunes is the character n-gram width folded into the vector.
const hashGramRunes = 3

// HashEmbedder produces deterministic vectors by folding character
// trigrams into dimension buckets. It needs no model server, which makes
// it the provider for tests and air-gapped development; the vectors
// capture surface overlap only, not meaning.
type HashEmbedder struct {
	config *config.EmbedderConfig
}

// NewHashEmbedder creates an offline deterministic embedder
func NewHashEmbedder(cfg *config.EmbedderConfig) (*HashEmbedder, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, NewEmbedderError("hash", "init", "invalid embedder config", err)
	}
	return &HashEmbedder{config: cfg}, nil
}

// Embed converts text into an L2-normalized vector of the configured
// dimension. Equal inputs always produce equal vectors.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewEmbedderError("hash", "embed", "request cancelled", err)
	}

	vector := make([]float32, e.config.Dimension)
	runes := []rune(strings.ToLower(text))
	if len(runes) == 0 {
		return vector, nil
	}

	grams := len(runes) - hashGramRunes + 1
	if grams < 1 {
		grams = 1
	}
	for i := 0; i < grams; i++ {
		end := i + hashGramRunes
		if end > len(runes) {
			end = len(runes)
		}
		h := fnv.New32a()
		h.Write([]byte(string(runes[i:end])))
		sum := h.Sum32()

		bucket := int(sum % uint32(e.config.Dimension))
		// Alternate the sign per gram so common grams cannot pull every
		// coordinate positive
		if sum&1 == 0 {
			vector[bucket]++
		} else {
			vector[bucket]--
		}
	}

	return normalizeL2(vector), nil
}

// Dimension returns the configured vector dimension
func (e *HashEmbedder) Dimension() int {
	return e.config.Dimension
}

// ModelName returns the configured model identifier
func (e *HashEmbedder) ModelName() string {
	return e.config.Model
}

// Close releases provider resources
func (e *HashEmbedder) Close() error {
	return nil
}
