package classifier

import (
	"encoding/json"
	"strings"
)

const systemPrompt = `You analyse a single team chat message and detect whether it contains
a task, a follow-up question, a decision or a meeting proposal.

Return only a JSON object with this structure, omitting kinds that are not present:
{
    "task":     {"detected": true, "title": "...", "dueDate": "...", "assignee": "..."},
    "followUp": {"detected": true, "question": "...", "directedAt": "...", "suggestedReply": "..."},
    "decision": {"detected": true, "summary": "...", "madeBy": "...", "context": "..."},
    "meeting":  {"detected": true, "topic": "...", "time": "...", "participants": "...", "suggestedAgenda": "..."}
}

Use empty strings for fields the message does not mention. The suggested agenda is a
short numbered list separated by newlines.`

// encodedResult wraps model text as an encoded-text agent result.
func encodedResult(text string) (*Response, error) {
	raw, err := json.Marshal(stripCodeFence(text))
	if err != nil {
		return nil, err
	}
	return &Response{Success: true, Response: &AgentResponse{Result: raw}}, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
