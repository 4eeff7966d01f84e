package session

import (
	contractx "github.com/jewelryops/agent/agent/contract"
)

// State is the per-session conversation state: ordered transcript, a
// bounded digest of the most recent assistant answer, and a cumulative
// tool-call counter. State values are not safe for concurrent turns;
// callers must serialize turns per session.
type State struct {
	SessionID            string             `json:"session_id"`
	Messages             []contractx.Message `json:"messages"`
	InvestigationSummary string             `json:"investigation_summary"`
	ToolCallsCount       int                `json:"tool_calls_count"`
}

func New(sessionID string) *State {
	return &State{SessionID: sessionID}
}

func (s *State) Append(role contractx.Role, content string) {
	s.Messages = append(s.Messages, contractx.Message{Role: role, Content: content})
}

func (s *State) AppendMessage(m contractx.Message) {
	s.Messages = append(s.Messages, m)
}

// Recent returns up to n of the most recent transcript messages.
func (s *State) Recent(n int) []contractx.Message {
	if n <= 0 || len(s.Messages) == 0 {
		return nil
	}
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// SetSummary overwrites the investigation summary with text truncated to
// limit runes.
func (s *State) SetSummary(text string, limit int) {
	if limit > 0 {
		if r := []rune(text); len(r) > limit {
			text = string(r[:limit])
		}
	}
	s.InvestigationSummary = text
}
