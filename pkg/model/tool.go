package model

// ToolResult is the outcome of a single agent tool invocation, as handed
// over by the tool-execution collaborator. Data carries the tool-specific
// payload on success; Error carries the message on failure.
type ToolResult struct {
	ToolName string `json:"tool_name"`
	Success  bool   `json:"success"`
	Data     any    `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
}
