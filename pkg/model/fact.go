package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidCategory   = goerr.New("invalid fact category")
	ErrInvalidTier       = goerr.New("invalid fact tier")
	ErrInvalidConfidence = goerr.New("confidence must be in [0, 1]")
	ErrEmptyContent      = goerr.New("fact content is empty")
)

type FactID string

// NewFactID generates a new unique FactID
func NewFactID() FactID {
	return FactID(uuid.New().String())
}

// Category classifies what a fact is about. It affects how facts are
// grouped when rendered into a context block, not how they are retained.
type Category string

const (
	CategoryProfile    Category = "profile"
	CategoryPreference Category = "preference"
	CategoryTechnical  Category = "technical"
	CategoryProject    Category = "project"
)

// Validate checks if the category is valid
func (c Category) Validate() error {
	switch c {
	case CategoryProfile, CategoryPreference, CategoryTechnical, CategoryProject:
		return nil
	default:
		return goerr.Wrap(ErrInvalidCategory, "", goerr.V("category", c))
	}
}

// Tier is the retention class of a fact. It decides how many facts of the
// class are kept and how long they live. Core facts never expire.
type Tier string

const (
	TierCore      Tier = "core"
	TierImportant Tier = "important"
	TierContext   Tier = "context"
)

// Validate checks if the tier is valid
func (t Tier) Validate() error {
	switch t {
	case TierCore, TierImportant, TierContext:
		return nil
	default:
		return goerr.Wrap(ErrInvalidTier, "", goerr.V("tier", t))
	}
}

// MemoryFact is a single recorded statement about a user.
type MemoryFact struct {
	ID         FactID    `firestore:"id" json:"id"`
	Content    string    `firestore:"content" json:"content"`
	Category   Category  `firestore:"category" json:"category"`
	Tier       Tier      `firestore:"tier" json:"tier"`
	Confidence float64   `firestore:"confidence" json:"confidence"`
	CreatedAt  time.Time `firestore:"created_at" json:"created_at"`
	LastUsedAt time.Time `firestore:"last_used_at" json:"last_used_at"`
	UseCount   int       `firestore:"use_count" json:"use_count"`

	// ExpiresAt is nil for facts that never expire. It must be nil for
	// TierCore facts.
	ExpiresAt *time.Time `firestore:"expires_at" json:"expires_at,omitempty"`

	// ExtractedFrom is the ID of the conversation the fact came from.
	ExtractedFrom string `firestore:"extracted_from" json:"extracted_from,omitempty"`
	AutoExtracted bool   `firestore:"auto_extracted" json:"auto_extracted"`
}

// TokenEstimate returns the estimated token cost of the fact using the
// retention-side heuristic of 4 characters per token, content only.
func (f *MemoryFact) TokenEstimate() int {
	if f.Content == "" {
		return 0
	}
	return (len(f.Content) + 3) / 4
}

// Expired reports whether the fact has an expiry in the past.
func (f *MemoryFact) Expired(now time.Time) bool {
	return f.ExpiresAt != nil && f.ExpiresAt.Before(now)
}

// FactInput is a candidate fact supplied by the extraction collaborator,
// before it has been deduplicated and stored.
type FactInput struct {
	Content    string   `json:"content"`
	Category   Category `json:"category"`
	Tier       Tier     `json:"tier"`
	Confidence float64  `json:"confidence"`
}

// Validate checks if the candidate is well-formed
func (in *FactInput) Validate() error {
	if in.Content == "" {
		return ErrEmptyContent
	}
	if err := in.Category.Validate(); err != nil {
		return err
	}
	if err := in.Tier.Validate(); err != nil {
		return err
	}
	if in.Confidence < 0 || in.Confidence > 1 {
		return goerr.Wrap(ErrInvalidConfidence, "", goerr.V("confidence", in.Confidence))
	}
	return nil
}
