package handler

import (
	"net/http"

	"atendimento-relay/internal/services"
	"atendimento-relay/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// ConnectionCounter reports how many websocket connections are open.
type ConnectionCounter interface {
	ConnectionCount() int
}

type AtendimentoHandler struct {
	service     *services.AtendimentoService
	connections ConnectionCounter
}

func NewAtendimentoHandler(service *services.AtendimentoService, connections ConnectionCounter) *AtendimentoHandler {
	return &AtendimentoHandler{service: service, connections: connections}
}

func (h *AtendimentoHandler) List(c *gin.Context) {
	list := h.service.ListAtendimentos()
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AtendimentoListResponse{
		Atendimentos: list,
		Total:        len(list),
	}))
}

func (h *AtendimentoHandler) Get(c *gin.Context) {
	a, err := h.service.GetAtendimento(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(a))
}

func (h *AtendimentoHandler) ListAgents(c *gin.Context) {
	agents := h.service.ListAgents()
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AgentListResponse{
		Agents: agents,
		Total:  len(agents),
	}))
}

// Stats returns the per-status breakdown.
func (h *AtendimentoHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(h.service.GetDetailedStats()))
}

// Estatisticas returns the compact totals.
func (h *AtendimentoHandler) Estatisticas(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(h.service.GetEstatisticas()))
}

func (h *AtendimentoHandler) Health(c *gin.Context) {
	stats := h.service.GetEstatisticas()
	res := httpdto.HealthResponse{
		Status:       "healthy",
		Atendimentos: stats.TotalAtendimentos,
		Agents:       stats.TotalAgentes,
	}
	if h.connections != nil {
		res.Connections = h.connections.ConnectionCount()
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}
