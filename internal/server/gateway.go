package server

import (
	"errors"
	"fmt"

	"atendimento-relay/internal/domain"
	"atendimento-relay/internal/events"
	"atendimento-relay/internal/services"
	relay_errors "atendimento-relay/pkg/errors"

	"go.uber.org/zap"
)

const agentSenderMessage = "sender agent requires an agent connection"

func (h *Hub) onCreateAtendimento(c *Client, in events.Inbound) {
	p := in.(*events.CreateAtendimentoPayload)

	a, err := h.service.CreateAtendimento(services.CreateAtendimentoInput{
		ClientName:  p.ClientName,
		ClientEmail: p.Email,
		Source:      p.Source,
		AutoCreated: p.AutoCreated,
	})
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.joinRoom(c, a.ID)
	if !c.identity.IsAgent {
		c.atendimentoID = a.ID
	}
	h.logger.Info("atendimento created", c, zap.String("atendimento_id", a.ID), zap.String("source", a.Source))

	h.emit(c, events.EventAtendimentoCreated, events.CreatedPayload{ID: a.ID})
	h.broadcastAll(events.EventAtendimentoNew, a.ID, a)

	if a.AutoCreated {
		h.postWelcome(c, a)
	}
}

// postWelcome sends the system welcome message to every peer.
func (h *Hub) postWelcome(c *Client, a domain.Atendimento) {
	msg, updated, err := h.service.AddMessage(services.AddMessageInput{
		AtendimentoID: a.ID,
		Sender:        domain.SenderSystem,
		Content:       fmt.Sprintf("%s entrou no chat", a.ClientName),
	})
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.broadcastAll(events.EventMessageNew, updated.ID, msg)
	h.broadcastAll(events.EventAtendimentoUpdated, updated.ID, updated)
}

func (h *Hub) onSendMessage(c *Client, in events.Inbound) {
	p := in.(*events.SendMessagePayload)

	if p.Sender == domain.SenderAgent && !c.identity.IsAgent {
		h.logger.Warn("agent message from client connection rejected", c, zap.String("atendimento_id", p.AtendimentoID))
		h.emit(c, events.EventError, events.ErrorPayload{Message: agentSenderMessage})
		return
	}

	h.postMessage(c, services.AddMessageInput{
		AtendimentoID: p.AtendimentoID,
		Sender:        p.Sender,
		Content:       p.Content,
		ClientName:    p.ClientName,
	})
}

// postMessage stores a message and fans it out: message:new to the room, atendimento:updated to everyone.
// Failures are reported to c when it is not nil.
func (h *Hub) postMessage(c *Client, in services.AddMessageInput) {
	msg, updated, err := h.service.AddMessage(in)
	if err != nil {
		if c != nil {
			h.emitError(c, err)
		}
		return
	}

	h.broadcastRoom(updated.ID, events.EventMessageNew, msg, nil)
	h.broadcastAll(events.EventAtendimentoUpdated, updated.ID, updated)
}

func (h *Hub) onAgentJoin(c *Client, in events.Inbound) {
	p := in.(*events.AgentJoinPayload)

	c.presenceID = p.AgentID
	h.service.AddAgent(p.AgentID, c.id, c.identity.AgentName)
	h.logger.Info("agent joined queue", c, zap.String("presence_id", p.AgentID))

	h.emit(c, events.EventAtendimentosList, h.service.ListAtendimentos())
}

func (h *Hub) onJoinAtendimento(c *Client, in events.Inbound) {
	p := in.(*events.JoinAtendimentoPayload)

	agentID := c.agentID()
	a, err := h.service.AcceptAtendimento(p.AtendimentoID, agentID, c.identity.AgentName)
	if err != nil {
		h.emitError(c, err)
		return
	}

	h.joinRoom(c, a.ID)
	h.logger.Info("agent accepted atendimento", c, zap.String("atendimento_id", a.ID))

	h.emit(c, events.EventAtendimentoMessages, events.MessageHistoryPayload{
		AtendimentoID: a.ID,
		Messages:      a.Messages,
	})
	h.broadcastRoom(a.ID, events.EventAtendimentoAccepted, events.AcceptedPayload{
		AtendimentoID: a.ID,
		AgentID:       agentID,
		AgentName:     c.identity.AgentName,
	}, c)
	h.broadcastAll(events.EventAtendimentoUpdated, a.ID, a)
}

func (h *Hub) onAgentTyping(c *Client, in events.Inbound) {
	p := in.(*events.AgentTypingPayload)

	h.broadcastRoom(p.AtendimentoID, events.EventAgentTyping, events.TypingPayload{
		AtendimentoID: p.AtendimentoID,
		AgentName:     c.identity.AgentName,
	}, c)
}

func (h *Hub) onCloseAtendimento(c *Client, in events.Inbound) {
	p := in.(*events.CloseAtendimentoPayload)

	a, err := h.service.CloseAtendimento(p.AtendimentoID)
	if err != nil {
		h.emitError(c, err)
		return
	}
	h.logger.Info("atendimento closed", c, zap.String("atendimento_id", a.ID))

	h.broadcastRoom(a.ID, events.EventAtendimentoClosed, events.ClosedPayload{
		AtendimentoID: a.ID,
		AgentName:     c.identity.AgentName,
	}, c)
	h.broadcastAll(events.EventAtendimentoUpdated, a.ID, a)
}

func (h *Hub) onSimulateClientMessage(c *Client, in events.Inbound) {
	p := in.(*events.SimulateClientMessagePayload)
	h.simulateClientMessage(p.AtendimentoID)
}

func (h *Hub) simulateTick() {
	id, err := h.service.PickWaiting()
	if err != nil {
		return
	}
	h.simulateClientMessage(id)
}

func (h *Hub) simulateClientMessage(atendimentoID string) {
	msg, updated, err := h.service.SimulateClientMessage(atendimentoID)
	if err != nil {
		if !errors.Is(err, relay_errors.ErrNotFound) {
			h.logger.Warn("simulated message failed", nil, zap.Error(err))
		}
		return
	}

	h.broadcastRoom(updated.ID, events.EventMessageNew, msg, nil)
	h.broadcastAll(events.EventAtendimentoUpdated, updated.ID, updated)
}

// onDisconnect runs after the connection left every room and its send channel is closed.
func (h *Hub) onDisconnect(c *Client) {
	if c.identity.IsAgent {
		if c.presenceID == "" {
			return
		}
		// a newer connection may already own the presence entry
		if p, ok := h.service.GetAgent(c.presenceID); ok && p.ConnectionID == c.id {
			h.service.RemoveAgent(c.presenceID)
			h.logger.Info("agent left", c, zap.String("presence_id", c.presenceID))
		}
		return
	}

	if c.atendimentoID == "" {
		return
	}
	updated, err := h.service.MarkClientDisconnected(c.atendimentoID)
	if err != nil {
		h.logger.Warn("mark client disconnected", c, zap.Error(err))
		return
	}
	h.broadcastAll(events.EventAtendimentoUpdated, updated.ID, updated)
}

// agentID is the presence id once the agent joined the queue, the admission token before that.
func (c *Client) agentID() string {
	if c.presenceID != "" {
		return c.presenceID
	}
	return c.identity.AgentID
}
