package conversation

import "strings"

// SpeechEvent is one recognition result batch from the speech-capture collaborator
type SpeechEvent struct {
	Final   []string `json:"final"`
	Interim string   `json:"interim"`
}

// Transcript accumulates recognized speech for the current listening session.
// Final segments are concatenated verbatim, without added spacing.
type Transcript struct {
	Interim string `json:"interim"`
	Final   string `json:"final"`
}

// Apply replaces the interim text and appends finalized segments in order
func (t *Transcript) Apply(ev SpeechEvent) {
	t.Interim = ev.Interim
	for _, segment := range ev.Final {
		t.Final += segment
	}
}

// Reset clears both interim and final text
func (t *Transcript) Reset() {
	t.Interim = ""
	t.Final = ""
}

// Display is the composer text while listening: the trimmed final text when
// there is any, the interim text otherwise.
func (t Transcript) Display() string {
	if final := strings.TrimSpace(t.Final); final != "" {
		return final
	}
	return t.Interim
}
