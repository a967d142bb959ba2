package agentctx

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/m-mizutani/mnemo/pkg/model"
)

const (
	maxKeyPoints     = 5
	maxDumpBytes     = 500
	errorSummaryFmt  = "Error: %s"
	unknownToolValue = "(unserializable result)"
)

// Compressed is the fixed-shape summary of one tool result, small enough
// to sit in the scratchpad while the full result stays in the recall
// store.
type Compressed struct {
	ToolName  string   `json:"tool_name"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points,omitempty"`
	Tokens    int      `json:"tokens"`
}

// CompressResults maps heterogeneous tool outputs into compact summaries.
// Extraction is keyed by tool name; unknown tools fall back to a
// truncated JSON dump of their data.
func CompressResults(results []model.ToolResult) []Compressed {
	compressed := make([]Compressed, 0, len(results))
	for _, r := range results {
		compressed = append(compressed, compressResult(r))
	}
	return compressed
}

func compressResult(r model.ToolResult) Compressed {
	c := Compressed{ToolName: r.ToolName}

	if !r.Success {
		c.Summary = fmt.Sprintf(errorSummaryFmt, r.Error)
		c.Tokens = EstimateTokens(c.Summary)
		return c
	}

	switch r.ToolName {
	case "web_search":
		c.Summary, c.KeyPoints = compressWebSearch(r.Data)
	case "web_fetch":
		c.Summary, c.KeyPoints = compressWebFetch(r.Data)
	default:
		c.Summary = compressGeneric(r.Data)
	}

	c.Tokens = EstimateTokens(c.Summary)
	for _, p := range c.KeyPoints {
		c.Tokens += EstimateTokens(p)
	}

	return c
}

func compressWebSearch(data any) (string, []string) {
	payload, ok := data.(map[string]any)
	if !ok {
		return compressGeneric(data), nil
	}

	query, _ := payload["query"].(string)
	results, _ := payload["results"].([]any)

	summary := fmt.Sprintf("Found %d results for %q", len(results), query)

	var points []string
	for _, item := range results {
		if len(points) >= maxKeyPoints {
			break
		}
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		title, _ := entry["title"].(string)
		link, _ := entry["link"].(string)
		points = append(points, fmt.Sprintf("%s (%s)", title, link))
	}

	return summary, points
}

func compressWebFetch(data any) (string, []string) {
	payload, ok := data.(map[string]any)
	if !ok {
		return compressGeneric(data), nil
	}

	url, _ := payload["url"].(string)
	title, _ := payload["title"].(string)
	content, _ := payload["content"].(string)

	summary := fmt.Sprintf("Fetched %q from %s", title, url)

	var points []string
	if content != "" {
		points = append(points, truncate(content, maxDumpBytes))
	}

	return summary, points
}

func compressGeneric(data any) string {
	raw, err := json.Marshal(data)
	if err != nil {
		return unknownToolValue
	}
	return truncate(string(raw), maxDumpBytes)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Cut on a rune boundary
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
