package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/mnemo/pkg/model"
)

const usageInstruction = "Reference these memories naturally when they are relevant. Never tell the user you are reading from stored memory."

var categorySections = []struct {
	category model.Category
	label    string
}{
	{model.CategoryProfile, "About the user"},
	{model.CategoryPreference, "Preferences"},
	{model.CategoryTechnical, "Technical Context"},
	{model.CategoryProject, "Current Work"},
}

func languageInstruction(lang model.LanguagePreference) string {
	switch lang {
	case model.LangEnglish:
		return "Always respond in English."
	case model.LangChinese:
		return "Always respond in Chinese (中文)."
	case model.LangHybrid:
		return "Respond in a natural mix of English and Chinese, following the user's lead."
	default:
		return ""
	}
}

func tierRank(tier model.Tier) int {
	switch tier {
	case model.TierCore:
		return 0
	case model.TierImportant:
		return 1
	default:
		// TierContext and anything unrecognized
		return 2
	}
}

// LoadForContext renders the user's memory into a context block for a
// prompt: language instruction first, then facts grouped into fixed
// category sections with core facts leading each section, then a trailing
// usage instruction. Returns "" when there is nothing to render; callers
// omit the section in that case. Every fact included in a non-empty
// render is marked as used, which feeds the importance scorer.
func (s *Service) LoadForContext(ctx context.Context, userID string) (string, error) {
	mem, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	if len(mem.Facts) == 0 && mem.LanguagePreference == nil {
		return "", nil
	}

	var b strings.Builder

	if mem.LanguagePreference != nil {
		if instruction := languageInstruction(*mem.LanguagePreference); instruction != "" {
			b.WriteString("## Response Language\n\n")
			b.WriteString(instruction)
			b.WriteString("\n\n")
		}
	}

	var used []model.FactID
	for _, section := range categorySections {
		var facts []*model.MemoryFact
		for _, f := range mem.Facts {
			if f.Category == section.category {
				facts = append(facts, f)
			}
		}
		if len(facts) == 0 {
			continue
		}

		sort.SliceStable(facts, func(i, j int) bool {
			return tierRank(facts[i].Tier) < tierRank(facts[j].Tier)
		})

		b.WriteString("## ")
		b.WriteString(section.label)
		b.WriteString("\n\n")
		for _, f := range facts {
			b.WriteString("- ")
			b.WriteString(f.Content)
			b.WriteString("\n")
			used = append(used, f.ID)
		}
		b.WriteString("\n")
	}

	b.WriteString(usageInstruction)
	b.WriteString("\n")

	if len(used) > 0 {
		if err := s.MarkUsed(ctx, userID, used); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}
