package models

import "time"

// Task is a detection promoted into the task list
type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	DueDate       string    `json:"due_date,omitempty"`
	Assignee      string    `json:"assignee,omitempty"`
	Completed     bool      `json:"completed"`
	FromMessageID string    `json:"from_message_id"`
	Channel       string    `json:"channel"`
	CreatedAt     time.Time `json:"created_at"`
}

type FollowUp struct {
	ID             string    `json:"id"`
	Question       string    `json:"question"`
	DirectedAt     string    `json:"directed_at"`
	SuggestedReply string    `json:"suggested_reply"`
	FromSender     string    `json:"from_sender"`
	FromMessageID  string    `json:"from_message_id"`
	Resolved       bool      `json:"resolved"`
	Channel        string    `json:"channel"`
	CreatedAt      time.Time `json:"created_at"`
}

type Decision struct {
	ID            string    `json:"id"`
	Summary       string    `json:"summary"`
	MadeBy        string    `json:"made_by"`
	Context       string    `json:"context"`
	FromMessageID string    `json:"from_message_id"`
	Channel       string    `json:"channel"`
	CreatedAt     time.Time `json:"created_at"`
}

type Meeting struct {
	ID              string    `json:"id"`
	Topic           string    `json:"topic"`
	Time            string    `json:"time"`
	Participants    string    `json:"participants"`
	SuggestedAgenda string    `json:"suggested_agenda"`
	Notes           string    `json:"notes"`
	NotesAdded      bool      `json:"notes_added"`
	FromMessageID   string    `json:"from_message_id"`
	Channel         string    `json:"channel"`
	CreatedAt       time.Time `json:"created_at"`
}
