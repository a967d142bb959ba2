package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var ErrInvalidLanguage = goerr.New("invalid language preference")

// LanguagePreference is the user's preferred response language.
type LanguagePreference string

const (
	LangEnglish LanguagePreference = "english"
	LangChinese LanguagePreference = "chinese"
	LangHybrid  LanguagePreference = "hybrid"
)

// Validate checks if the language preference is valid
func (l LanguagePreference) Validate() error {
	switch l {
	case LangEnglish, LangChinese, LangHybrid:
		return nil
	default:
		return goerr.Wrap(ErrInvalidLanguage, "", goerr.V("language", l))
	}
}

// MemoryStats summarizes the stored memory of a user. TokenUsage must
// equal the estimated token cost of all stored facts after every save.
type MemoryStats struct {
	TotalFacts  int       `firestore:"total_facts" json:"total_facts"`
	TokenUsage  int       `firestore:"token_usage" json:"token_usage"`
	LastCleanup time.Time `firestore:"last_cleanup" json:"last_cleanup"`
}

// UserMemory is the aggregate of everything remembered about one user.
// Documents written by an older schema may lack language_preference; the
// pointer stays nil in that case.
type UserMemory struct {
	UserID             string              `firestore:"user_id" json:"user_id"`
	Facts              []*MemoryFact       `firestore:"facts" json:"facts"`
	LanguagePreference *LanguagePreference `firestore:"language_preference" json:"language_preference,omitempty"`
	Stats              MemoryStats         `firestore:"stats" json:"stats"`
	UpdatedAt          time.Time           `firestore:"updated_at" json:"updated_at"`
}

// NewUserMemory creates an empty aggregate for a user
func NewUserMemory(userID string) *UserMemory {
	return &UserMemory{
		UserID: userID,
		Facts:  []*MemoryFact{},
	}
}

// TokenUsage sums the estimated token cost of all facts.
func (m *UserMemory) TokenUsage() int {
	total := 0
	for _, f := range m.Facts {
		total += f.TokenEstimate()
	}
	return total
}

// RecalcStats refreshes TotalFacts and TokenUsage from the fact set.
// LastCleanup is left untouched; only the eviction pipeline updates it.
func (m *UserMemory) RecalcStats() {
	m.Stats.TotalFacts = len(m.Facts)
	m.Stats.TokenUsage = m.TokenUsage()
}

// FindFact returns the fact with the given ID, or nil.
func (m *UserMemory) FindFact(id FactID) *MemoryFact {
	for _, f := range m.Facts {
		if f.ID == id {
			return f
		}
	}
	return nil
}
