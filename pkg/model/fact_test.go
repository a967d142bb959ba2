package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/mnemo/pkg/model"
)

func TestFactInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   model.FactInput
		wantErr bool
	}{
		{
			name: "valid input",
			input: model.FactInput{
				Content:    "Works as a backend engineer",
				Category:   model.CategoryProfile,
				Tier:       model.TierCore,
				Confidence: 0.9,
			},
		},
		{
			name: "empty content",
			input: model.FactInput{
				Category:   model.CategoryProfile,
				Tier:       model.TierCore,
				Confidence: 0.9,
			},
			wantErr: true,
		},
		{
			name: "unknown category",
			input: model.FactInput{
				Content:    "something",
				Category:   model.Category("hobby"),
				Tier:       model.TierContext,
				Confidence: 0.7,
			},
			wantErr: true,
		},
		{
			name: "unknown tier",
			input: model.FactInput{
				Content:    "something",
				Category:   model.CategoryPreference,
				Tier:       model.Tier("forever"),
				Confidence: 0.7,
			},
			wantErr: true,
		},
		{
			name: "confidence out of range",
			input: model.FactInput{
				Content:    "something",
				Category:   model.CategoryPreference,
				Tier:       model.TierContext,
				Confidence: 1.2,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestFactTokenEstimate(t *testing.T) {
	fact := &model.MemoryFact{Content: "12345678"}
	gt.Equal(t, fact.TokenEstimate(), 2)

	fact = &model.MemoryFact{Content: "123456789"}
	gt.Equal(t, fact.TokenEstimate(), 3)

	fact = &model.MemoryFact{}
	gt.Equal(t, fact.TokenEstimate(), 0)
}

func TestFactExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	gt.False(t, (&model.MemoryFact{}).Expired(now))
	gt.True(t, (&model.MemoryFact{ExpiresAt: &past}).Expired(now))
	gt.False(t, (&model.MemoryFact{ExpiresAt: &future}).Expired(now))
}

func TestUserMemoryRecalcStats(t *testing.T) {
	mem := model.NewUserMemory("user-1")
	mem.Facts = []*model.MemoryFact{
		{ID: model.NewFactID(), Content: "12345678"},
		{ID: model.NewFactID(), Content: "1234"},
	}
	mem.RecalcStats()

	gt.Equal(t, mem.Stats.TotalFacts, 2)
	gt.Equal(t, mem.Stats.TokenUsage, 3)
}
