package workspace

import "sync"

// Composer is the pending input of the message box.
type Composer struct {
	mu      sync.Mutex
	draft   string
	focused bool
}

type ComposerState struct {
	Draft   string `json:"draft"`
	Focused bool   `json:"focused"`
}

func (c *Composer) Set(draft string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = draft
}

// Focus places text in the composer and focuses it.
func (c *Composer) Focus(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
	c.focused = true
}

func (c *Composer) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = ""
	c.focused = false
}

func (c *Composer) Snapshot() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComposerState{Draft: c.draft, Focused: c.focused}
}
