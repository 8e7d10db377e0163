package httpdto

import "atendimento-relay/internal/domain"

type AtendimentoListResponse struct {
	Atendimentos []domain.Atendimento `json:"atendimentos"`
	Total        int                  `json:"total"`
}

type AgentListResponse struct {
	Agents []domain.AgentPresence `json:"agents"`
	Total  int                    `json:"total"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	Atendimentos int    `json:"atendimentos"`
	Agents       int    `json:"agents"`
	Connections  int    `json:"connections"`
}
