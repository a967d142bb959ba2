package memory_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/usecase/memory"
)

func factsWith(contents ...string) []*model.MemoryFact {
	facts := make([]*model.MemoryFact, 0, len(contents))
	for _, c := range contents {
		facts = append(facts, &model.MemoryFact{
			ID:      model.NewFactID(),
			Content: c,
		})
	}
	return facts
}

func TestIsDuplicate(t *testing.T) {
	tests := []struct {
		name      string
		existing  []string
		candidate string
		expected  bool
	}{
		{
			name:      "exact match",
			existing:  []string{"User works as a backend engineer"},
			candidate: "User works as a backend engineer",
			expected:  true,
		},
		{
			name:      "match differs only in case and whitespace",
			existing:  []string{"User works as a backend engineer"},
			candidate: "  user WORKS as a backend engineer ",
			expected:  true,
		},
		{
			name:      "near-identical content",
			existing:  []string{"User prefers dark mode in all editors"},
			candidate: "User prefers dark mode in all editors!",
			expected:  true,
		},
		{
			name:      "unrelated content",
			existing:  []string{"Drinks black coffee"},
			candidate: "Maintains a Kubernetes cluster for the data platform team",
			expected:  false,
		},
		{
			name:      "no existing facts",
			existing:  nil,
			candidate: "Anything at all",
			expected:  false,
		},
		{
			name:      "duplicate of second fact",
			existing:  []string{"Lives in Osaka", "Uses Go for most projects"},
			candidate: "uses go for most projects",
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := memory.IsDuplicate(factsWith(tt.existing...), tt.candidate)
			gt.Equal(t, got, tt.expected)
		})
	}
}

func TestIsDuplicateIsPure(t *testing.T) {
	existing := factsWith("User prefers tabs over spaces")
	before := existing[0].Content

	memory.IsDuplicate(existing, "User prefers tabs over spaces")
	gt.Equal(t, existing[0].Content, before)
}
