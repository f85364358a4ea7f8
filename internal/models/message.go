package models

import "time"

// Kind names one of the four detection kinds the classifier can report.
type Kind string

const (
	KindTask     Kind = "task"
	KindFollowUp Kind = "followUp"
	KindDecision Kind = "decision"
	KindMeeting  Kind = "meeting"
)

// Kinds lists every detection kind in display order.
var Kinds = []Kind{KindTask, KindFollowUp, KindDecision, KindMeeting}

// Message represents a chat message with its optional classification
type Message struct {
	ID           string        `json:"id"`
	Sender       string        `json:"sender"`
	Avatar       string        `json:"avatar"`
	Content      string        `json:"content"`
	CreatedAt    time.Time     `json:"created_at"`
	Channel      string        `json:"channel"`
	Intelligence *Intelligence `json:"intelligence,omitempty"`

	TaskAdded     bool `json:"task_added,omitempty"`
	FollowUpAdded bool `json:"follow_up_added,omitempty"`
	DecisionAdded bool `json:"decision_added,omitempty"`
	MeetingAdded  bool `json:"meeting_added,omitempty"`

	IsProcessing bool `json:"is_processing,omitempty"`
}

// Intelligence holds the detections attached to a message. Each sub-record is
// independent of the others.
type Intelligence struct {
	Task     *TaskDetection     `json:"task,omitempty"`
	FollowUp *FollowUpDetection `json:"follow_up,omitempty"`
	Decision *DecisionDetection `json:"decision,omitempty"`
	Meeting  *MeetingDetection  `json:"meeting,omitempty"`
}

type TaskDetection struct {
	Detected bool   `json:"detected"`
	Title    string `json:"title"`
	DueDate  string `json:"due_date"`
	Assignee string `json:"assignee"`
}

type FollowUpDetection struct {
	Detected       bool   `json:"detected"`
	Question       string `json:"question"`
	DirectedAt     string `json:"directed_at"`
	SuggestedReply string `json:"suggested_reply"`
}

type DecisionDetection struct {
	Detected bool   `json:"detected"`
	Summary  string `json:"summary"`
	MadeBy   string `json:"made_by"`
	Context  string `json:"context"`
}

type MeetingDetection struct {
	Detected        bool   `json:"detected"`
	Topic           string `json:"topic"`
	Time            string `json:"time"`
	Participants    string `json:"participants"`
	SuggestedAgenda string `json:"suggested_agenda"`
}

// Empty reports whether no kind is present.
func (i *Intelligence) Empty() bool {
	return i == nil || (i.Task == nil && i.FollowUp == nil && i.Decision == nil && i.Meeting == nil)
}

// Detected reports whether the message carries a detected payload of the given kind.
func (m *Message) Detected(kind Kind) bool {
	in := m.Intelligence
	if in == nil {
		return false
	}
	switch kind {
	case KindTask:
		return in.Task != nil && in.Task.Detected
	case KindFollowUp:
		return in.FollowUp != nil && in.FollowUp.Detected
	case KindDecision:
		return in.Decision != nil && in.Decision.Detected
	case KindMeeting:
		return in.Meeting != nil && in.Meeting.Detected
	}
	return false
}

// Added reports whether the detection of the given kind was promoted.
func (m *Message) Added(kind Kind) bool {
	switch kind {
	case KindTask:
		return m.TaskAdded
	case KindFollowUp:
		return m.FollowUpAdded
	case KindDecision:
		return m.DecisionAdded
	case KindMeeting:
		return m.MeetingAdded
	}
	return false
}

// AddedConsistent reports whether every set added flag has a matching detection.
func (m *Message) AddedConsistent() bool {
	for _, k := range Kinds {
		if m.Added(k) && !m.Detected(k) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy. Detections are immutable once attached, so
// sharing the Intelligence pointer is safe.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
