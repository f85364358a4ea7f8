package classifier

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// KeywordClassifier detects the four kinds from simple phrase patterns.
// It needs no credentials and always answers with a structured result.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var (
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]?`)
	mentionRe  = regexp.MustCompile(`@(\w+)`)
	dueRe      = regexp.MustCompile(`(?i)\b(?:by|before|until|due)\s+((?:next\s+)?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|tomorrow|tonight|today|eod|end of (?:the\s+)?(?:day|week|month)))\b`)
	taskRe     = regexp.MustCompile(`(?i)\b(?:need to|needs to|have to|has to|must|remember to|todo:?)\s+(.+?)(?:\s+(?:by|before|until|due)\s+.*)?[.!]?$`)
	timeRe     = regexp.MustCompile(`(?i)\b((?:today|tomorrow|monday|tuesday|wednesday|thursday|friday|saturday|sunday|next week)(?:\s+at\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?)?|\d{1,2}(?::\d{2})?\s*(?:am|pm))\b`)
	topicRe    = regexp.MustCompile(`(?i)\b(?:discuss|about|to review|on)\s+(?:the\s+)?(.+?)(?:[.!?]|\s+@|$)`)
	askRe      = regexp.MustCompile(`(?i)^\s*(?:@\w+\s+)?(?:can|could|would|will|should|did|do|does|any)\b`)
)

var (
	decisionKeywords = []string{"decided", "approved", "agreed", "go with", "going with", "settled on", "signed off"}
	meetingKeywords  = []string{"meeting", "sync", "call", "schedule", "standup", "catch up", "huddle"}
)

func (c *KeywordClassifier) Classify(ctx context.Context, text, agentID string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := map[string]any{}
	sentences := splitSentences(text)
	mentions := mentionRe.FindAllStringSubmatch(text, -1)

	for _, s := range sentences {
		if m := taskRe.FindStringSubmatch(s); m != nil {
			task := map[string]any{"detected": true, "title": capitalize(m[1])}
			if d := dueRe.FindStringSubmatch(s); d != nil {
				task["dueDate"] = capitalize(d[1])
			}
			if len(mentions) > 0 {
				task["assignee"] = mentions[0][1]
			}
			result["task"] = task
			break
		}
	}

	for _, s := range sentences {
		if !strings.HasSuffix(s, "?") {
			continue
		}
		if len(mentions) == 0 && !askRe.MatchString(s) {
			continue
		}
		question := strings.TrimSpace(mentionRe.ReplaceAllString(s, ""))
		followUp := map[string]any{
			"detected":       true,
			"question":       capitalize(question),
			"suggestedReply": "Sure, I will look into it and get back to you shortly.",
		}
		if len(mentions) > 0 {
			followUp["directedAt"] = mentions[0][1]
		}
		result["followUp"] = followUp
		break
	}

	lower := strings.ToLower(text)
	for _, s := range sentences {
		if containsAny(strings.ToLower(s), decisionKeywords) {
			result["decision"] = map[string]any{
				"detected": true,
				"summary":  strings.TrimRight(s, ".!"),
				"context":  strings.TrimSpace(text),
			}
			break
		}
	}

	if containsAny(lower, meetingKeywords) {
		if when := timeRe.FindString(text); when != "" {
			topic := "Team sync"
			if m := topicRe.FindStringSubmatch(text); m != nil && !timeRe.MatchString(m[1]) {
				topic = capitalize(m[1])
			}
			names := make([]string, 0, len(mentions))
			for _, m := range mentions {
				names = append(names, m[1])
			}
			result["meeting"] = map[string]any{
				"detected":        true,
				"topic":           topic,
				"time":            capitalize(when),
				"participants":    strings.Join(names, ", "),
				"suggestedAgenda": "1. Review current status\n2. Discuss " + strings.ToLower(topic) + "\n3. Agree on next steps",
			}
		}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &Response{Success: true, Response: &AgentResponse{Result: raw}}, nil
}

func splitSentences(text string) []string {
	parts := sentenceRe.FindAllString(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
