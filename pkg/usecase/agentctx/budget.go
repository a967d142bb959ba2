package agentctx

// Budget allocates an agent invocation's token window across its
// components. Sub-allocations must not sum past Total; ResponseBuffer is
// held back for the model's answer and never spent on input.
type Budget struct {
	Total               int
	SystemPrompt        int
	ConversationHistory int
	CurrentMessage      int
	Scratchpad          int
	ResponseBuffer      int
}

const defaultTotalTokens = 8192

// DefaultBudget derives a proportional allocation from a total window
// size. Non-positive totals fall back to a safe default.
func DefaultBudget(total int) Budget {
	if total <= 0 {
		total = defaultTotalTokens
	}

	system := total * 15 / 100
	history := total * 30 / 100
	current := total * 10 / 100
	response := total * 20 / 100

	return Budget{
		Total:               total,
		SystemPrompt:        system,
		ConversationHistory: history,
		CurrentMessage:      current,
		Scratchpad:          total - system - history - current - response,
		ResponseBuffer:      response,
	}
}

// Check sums the token estimates of the assembled components against the
// input allowance (Total minus ResponseBuffer). The returned headroom is
// floored at zero, never negative.
func (b Budget) Check(systemPrompt, history, currentMessage, scratchpad string) (bool, int) {
	used := EstimateTokens(systemPrompt) +
		EstimateTokens(history) +
		EstimateTokens(currentMessage) +
		EstimateTokens(scratchpad)

	allowance := b.Total - b.ResponseBuffer
	remaining := allowance - used
	if remaining < 0 {
		remaining = 0
	}

	return used <= allowance, remaining
}
