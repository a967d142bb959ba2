package agentctx

import (
	"fmt"
	"strings"
)

const (
	iterationHeader  = "## Iteration "
	truncationMarker = "[Earlier iterations truncated]"
	errorMarker      = "(This step reported an error.)"
)

// Observation is the agent's view of one tool execution outcome.
type Observation struct {
	Content string
	IsError bool
}

// BuildScratchpad interleaves reasoning steps and observations into
// iteration blocks. When one list is shorter, the missing half of the
// iteration is simply omitted. Returns "" when both inputs are empty.
func BuildScratchpad(reasoning []string, observations []Observation) string {
	n := len(reasoning)
	if len(observations) > n {
		n = len(observations)
	}
	if n == 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s%d\n", iterationHeader, i+1)

		if i < len(reasoning) {
			b.WriteString("### Reasoning\n")
			b.WriteString(reasoning[i])
			b.WriteString("\n")
		}
		if i < len(observations) {
			b.WriteString("### Observation\n")
			b.WriteString(observations[i].Content)
			b.WriteString("\n")
			if observations[i].IsError {
				b.WriteString(errorMarker)
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// TruncateScratchpad drops whole iterations from the front until the
// scratchpad fits the token budget, keeping the most recent work. A
// truncated result is prefixed with an explicit marker; when not even
// the latest iteration fits, the marker is all that remains. Iterations
// are never cut in half. Input within budget is returned unchanged.
func TruncateScratchpad(text string, maxTokens int) string {
	if EstimateTokens(text) <= maxTokens {
		return text
	}

	iterations := splitIterations(text)
	budget := maxTokens - EstimateTokens(truncationMarker+"\n\n")

	kept := make([]string, 0, len(iterations))
	total := 0
	for i := len(iterations) - 1; i >= 0; i-- {
		cost := EstimateTokens(iterations[i])
		if total+cost > budget {
			break
		}
		kept = append([]string{iterations[i]}, kept...)
		total += cost
	}

	if len(kept) == 0 {
		return truncationMarker
	}

	return truncationMarker + "\n\n" + strings.Join(kept, "")
}

// splitIterations cuts the scratchpad into whole iteration blocks, each
// starting with its header line.
func splitIterations(text string) []string {
	parts := strings.Split(text, iterationHeader)

	var iterations []string
	for i, part := range parts {
		if i == 0 {
			// Text before the first header, usually empty
			continue
		}
		iterations = append(iterations, iterationHeader+part)
	}

	return iterations
}
