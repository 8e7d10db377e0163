package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"atendimento-relay/internal/domain"
	relay_errors "atendimento-relay/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Inbound is implemented by every payload a peer may send.
type Inbound interface {
	EventName() string
}

type CreateAtendimentoPayload struct {
	ClientName  string `json:"clientName" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Source      string `json:"source" validate:"required"`
	AutoCreated bool   `json:"autoCreated"`
}

type SendMessagePayload struct {
	AtendimentoID string            `json:"atendimentoId" validate:"required"`
	Content       string            `json:"content" validate:"required"`
	Sender        domain.SenderType `json:"sender" validate:"required,oneof=client agent"`
	ClientName    string            `json:"clientName"`
}

type AgentJoinPayload struct {
	AgentID string `json:"agentId" validate:"required"`
}

type JoinAtendimentoPayload struct {
	AtendimentoID string `json:"atendimentoId" validate:"required"`
}

type AgentTypingPayload struct {
	AtendimentoID string `json:"atendimentoId" validate:"required"`
}

type CloseAtendimentoPayload struct {
	AtendimentoID string `json:"atendimentoId" validate:"required"`
}

type SimulateClientMessagePayload struct {
	AtendimentoID string `json:"atendimentoId" validate:"required"`
}

func (CreateAtendimentoPayload) EventName() string     { return EventAtendimentoCreate }
func (SendMessagePayload) EventName() string           { return EventMessageSend }
func (AgentJoinPayload) EventName() string             { return EventAgentJoin }
func (JoinAtendimentoPayload) EventName() string       { return EventAtendimentoJoin }
func (AgentTypingPayload) EventName() string           { return EventAgentTyping }
func (CloseAtendimentoPayload) EventName() string      { return EventAtendimentoClose }
func (SimulateClientMessagePayload) EventName() string { return EventSimulateClientMessage }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func newInbound(event string) (Inbound, bool) {
	switch event {
	case EventAtendimentoCreate:
		return &CreateAtendimentoPayload{}, true
	case EventMessageSend:
		return &SendMessagePayload{}, true
	case EventAgentJoin:
		return &AgentJoinPayload{}, true
	case EventAtendimentoJoin:
		return &JoinAtendimentoPayload{}, true
	case EventAgentTyping:
		return &AgentTypingPayload{}, true
	case EventAtendimentoClose:
		return &CloseAtendimentoPayload{}, true
	case EventSimulateClientMessage:
		return &SimulateClientMessagePayload{}, true
	}
	return nil, false
}

// DecodeInbound turns an envelope into its typed payload and enforces the required fields.
// The returned value is always a pointer to one of the payload structs above.
func DecodeInbound(env Envelope) (Inbound, error) {
	in, ok := newInbound(env.Event)
	if !ok {
		return nil, fmt.Errorf("unknown event %q: %w", env.Event, relay_errors.ErrInvalidInput)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("%s: missing payload: %w", env.Event, relay_errors.ErrInvalidInput)
	}
	if err := json.Unmarshal(data, in); err != nil {
		return nil, fmt.Errorf("%s: malformed payload: %w", env.Event, relay_errors.ErrInvalidInput)
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", env.Event, describe(err), relay_errors.ErrInvalidInput)
	}
	return in, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, ", ")
}
