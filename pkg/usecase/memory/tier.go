package memory

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/model"
	"gopkg.in/yaml.v3"
)

// TierLimit is the retention configuration of one tier. MaxAgeDays of 0
// means facts of the tier never expire.
type TierLimit struct {
	MaxFacts   int `yaml:"max_facts"`
	MaxAgeDays int `yaml:"max_age_days"`
}

// Policy is the static retention table: per-tier capacity and expiry plus
// the token budget shared across all tiers.
type Policy struct {
	Tiers          map[model.Tier]TierLimit `yaml:"tiers"`
	MaxTotalTokens int                      `yaml:"max_total_tokens"`
}

// DefaultPolicy returns the built-in retention table.
func DefaultPolicy() *Policy {
	return &Policy{
		Tiers: map[model.Tier]TierLimit{
			model.TierCore:      {MaxFacts: 8, MaxAgeDays: 0},
			model.TierImportant: {MaxFacts: 12, MaxAgeDays: 90},
			model.TierContext:   {MaxFacts: 6, MaxAgeDays: 30},
		},
		MaxTotalTokens: 500,
	}
}

// LoadPolicy reads a YAML override file. Tiers absent from the file keep
// their defaults, as does a missing max_total_tokens.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", path))
	}

	var override Policy
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy file", goerr.V("path", path))
	}

	policy := DefaultPolicy()
	for tier, limit := range override.Tiers {
		if err := tier.Validate(); err != nil {
			return nil, goerr.Wrap(err, "unknown tier in policy file", goerr.V("path", path))
		}
		policy.Tiers[tier] = limit
	}
	if override.MaxTotalTokens > 0 {
		policy.MaxTotalTokens = override.MaxTotalTokens
	}

	return policy, nil
}

// Limit returns the limit for a tier. Unknown tiers fall back to the
// context tier; callers log the coercion.
func (p *Policy) Limit(tier model.Tier) TierLimit {
	if limit, ok := p.Tiers[tier]; ok {
		return limit
	}
	return p.Tiers[model.TierContext]
}

// ExpiresAt returns the expiry for a fact of the given tier created at
// the given time, or nil when the tier never expires.
func (p *Policy) ExpiresAt(tier model.Tier, createdAt time.Time) *time.Time {
	limit := p.Limit(tier)
	if limit.MaxAgeDays <= 0 {
		return nil
	}
	expires := createdAt.Add(time.Duration(limit.MaxAgeDays) * 24 * time.Hour)
	return &expires
}
