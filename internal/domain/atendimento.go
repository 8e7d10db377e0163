package domain

import "time"

// Atendimento is one client-to-support-desk conversation.
type Atendimento struct {
	ID              string            `json:"id"`
	ClientName      string            `json:"clientName"`
	ClientEmail     string            `json:"clientEmail"`
	Source          string            `json:"source,omitempty"`
	AutoCreated     bool              `json:"autoCreated,omitempty"`
	Status          AtendimentoStatus `json:"status"`
	UnreadCount     int               `json:"unreadCount"`
	Messages        []Message         `json:"messages"`
	LastMessage     *Message          `json:"lastMessage,omitempty"`
	AgentID         *string           `json:"agentId"`
	AgentName       *string           `json:"agentName"`
	ClientConnected bool              `json:"clientConnected"`
	StartedAt       time.Time         `json:"startedAt"`
}

type Message struct {
	ID            string     `json:"id"`
	AtendimentoID string     `json:"atendimentoId"`
	Sender        SenderType `json:"sender"`
	Content       string     `json:"content"`
	Timestamp     time.Time  `json:"timestamp"`
	ClientName    string     `json:"clientName,omitempty"`
}

// AtendimentoPatch carries the fields of a shallow update. Nil fields are left untouched.
type AtendimentoPatch struct {
	Status          *AtendimentoStatus
	UnreadCount     *int
	AgentID         *string
	AgentName       *string
	ClientConnected *bool
}

// AgentPresence is the ephemeral record of an online agent.
type AgentPresence struct {
	AgentID      string    `json:"agentId"`
	ConnectionID string    `json:"connectionId"`
	Username     string    `json:"username"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// Clone returns a deep copy. LastMessage points into the copied Messages slice.
func (a *Atendimento) Clone() Atendimento {
	out := *a
	out.Messages = make([]Message, len(a.Messages))
	copy(out.Messages, a.Messages)
	out.LastMessage = nil
	if n := len(out.Messages); n > 0 {
		out.LastMessage = &out.Messages[n-1]
	}
	if a.AgentID != nil {
		id := *a.AgentID
		out.AgentID = &id
	}
	if a.AgentName != nil {
		name := *a.AgentName
		out.AgentName = &name
	}
	return out
}

// Apply merges the non-nil patch fields.
func (a *Atendimento) Apply(p AtendimentoPatch) {
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.UnreadCount != nil {
		a.UnreadCount = *p.UnreadCount
	}
	if p.AgentID != nil {
		id := *p.AgentID
		a.AgentID = &id
	}
	if p.AgentName != nil {
		name := *p.AgentName
		a.AgentName = &name
	}
	if p.ClientConnected != nil {
		a.ClientConnected = *p.ClientConnected
	}
}

// ApplyMessage appends m and moves status and unread count according to the sender.
// A client message puts the conversation back in the queue, an agent message means
// it is being handled. System messages leave both untouched.
func (a *Atendimento) ApplyMessage(m Message) {
	a.Messages = append(a.Messages, m)
	a.LastMessage = &a.Messages[len(a.Messages)-1]

	switch m.Sender {
	case SenderClient:
		a.Status = StatusWaiting
		a.UnreadCount++
	case SenderAgent:
		a.Status = StatusActive
		a.UnreadCount = 0
	}
}
