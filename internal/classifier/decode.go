package classifier

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/xaenox/huddle-bot/internal/models"
)

var (
	ErrUndecodable      = errors.New("payload is not valid json")
	ErrMalformedPayload = errors.New("payload is not an object")
)

// DecodeIntelligence reads the agent result. The result is either a JSON
// object or a JSON string holding one. Only kinds with a truthy "detected"
// are copied and missing fields default to "".
func DecodeIntelligence(raw []byte) (*models.Intelligence, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrUndecodable
	}

	doc := gjson.ParseBytes(raw)
	if doc.Type == gjson.String {
		text := doc.String()
		if !gjson.Valid(text) {
			return nil, ErrUndecodable
		}
		doc = gjson.Parse(text)
	}

	switch {
	case doc.Type == gjson.Null:
		return nil, nil
	case !doc.IsObject():
		return nil, fmt.Errorf("%w: got %s", ErrMalformedPayload, doc.Type)
	}

	intel := &models.Intelligence{}

	if t := doc.Get("task"); t.Get("detected").Bool() {
		intel.Task = &models.TaskDetection{
			Detected: true,
			Title:    t.Get("title").String(),
			DueDate:  t.Get("dueDate").String(),
			Assignee: t.Get("assignee").String(),
		}
	}
	if f := doc.Get("followUp"); f.Get("detected").Bool() {
		intel.FollowUp = &models.FollowUpDetection{
			Detected:       true,
			Question:       f.Get("question").String(),
			DirectedAt:     f.Get("directedAt").String(),
			SuggestedReply: f.Get("suggestedReply").String(),
		}
	}
	if d := doc.Get("decision"); d.Get("detected").Bool() {
		intel.Decision = &models.DecisionDetection{
			Detected: true,
			Summary:  d.Get("summary").String(),
			MadeBy:   d.Get("madeBy").String(),
			Context:  d.Get("context").String(),
		}
	}
	if m := doc.Get("meeting"); m.Get("detected").Bool() {
		intel.Meeting = &models.MeetingDetection{
			Detected:        true,
			Topic:           m.Get("topic").String(),
			Time:            m.Get("time").String(),
			Participants:    m.Get("participants").String(),
			SuggestedAgenda: m.Get("suggestedAgenda").String(),
		}
	}

	return intel, nil
}
