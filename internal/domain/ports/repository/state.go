package repository

import "context"

// ConversationState tracks a multi-step flow (admin product creation, stock
// adjustment, location editing). Step names the flow position; Data carries
// the values collected so far.
type ConversationState struct {
	Step string            `json:"step"`
	Data map[string]string `json:"data,omitempty"`
}

func (s *ConversationState) Get(key string) string {
	if s == nil || s.Data == nil {
		return ""
	}
	return s.Data[key]
}

func (s *ConversationState) Set(key, value string) {
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	s.Data[key] = value
}

// StateRepository persists conversational state keyed by telegram ID.
// A nil state with nil error means "no flow in progress".
type StateRepository interface {
	SetState(ctx context.Context, tgID int64, state *ConversationState) error
	GetState(ctx context.Context, tgID int64) (*ConversationState, error)
	ClearState(ctx context.Context, tgID int64) error
}
