package extract

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mnemo/pkg/adapter"
	"github.com/m-mizutani/mnemo/pkg/model"
	"github.com/m-mizutani/mnemo/pkg/utils/logging"
	"google.golang.org/genai"
)

// minConfidence is the extraction gate: candidates the model is less
// sure about never reach the fact store.
const minConfidence = 0.6

//go:embed prompt/extract.md
var extractPromptRaw string

// Result is the validated output of one extraction pass.
type Result struct {
	Facts              []model.FactInput
	LanguagePreference *model.LanguagePreference
}

// Extractor turns raw conversation text into candidate facts via Gemini.
type Extractor struct {
	gemini adapter.Gemini
}

// New creates a new extractor
func New(gemini adapter.Gemini) *Extractor {
	return &Extractor{gemini: gemini}
}

// rawResponse mirrors the JSON shape requested by the prompt.
type rawResponse struct {
	Facts              []model.FactInput `json:"facts"`
	LanguagePreference string            `json:"language_preference"`
}

// Extract asks the model for candidate facts and filters out anything
// malformed or below the confidence gate. Invalid candidates are dropped
// with a warning, never returned as errors: a single bad item must not
// discard the rest of the batch.
func (x *Extractor) Extract(ctx context.Context, conversation string) (*Result, error) {
	if strings.TrimSpace(conversation) == "" {
		return &Result{}, nil
	}

	contents := []*genai.Content{
		genai.NewContentFromText(conversation, genai.RoleUser),
		genai.NewContentFromText(extractPromptRaw, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText("You extract long-term user memory from conversations.", ""),
	}

	resp, err := x.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate extraction")
	}

	text := responseText(resp)
	if text == "" {
		return nil, goerr.New("empty extraction response")
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to parse extraction response", goerr.V("response", text))
	}

	logger := logging.From(ctx)
	result := &Result{}

	for _, in := range raw.Facts {
		if err := in.Validate(); err != nil {
			logger.Warn("dropping invalid extracted fact", "error", err, "content", in.Content)
			continue
		}
		if in.Confidence < minConfidence {
			logger.Debug("dropping low-confidence fact",
				"confidence", in.Confidence, "content", in.Content)
			continue
		}
		result.Facts = append(result.Facts, in)
	}

	if raw.LanguagePreference != "" {
		lang := model.LanguagePreference(raw.LanguagePreference)
		if err := lang.Validate(); err != nil {
			logger.Warn("dropping invalid language preference", "language", raw.LanguagePreference)
		} else {
			result.LanguagePreference = &lang
		}
	}

	return result, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// stripCodeFence removes a surrounding ```json fence if the model added
// one despite the prompt.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
