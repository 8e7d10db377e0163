package domain

type AtendimentoStatus string

const (
	StatusWaiting AtendimentoStatus = "waiting"
	StatusActive  AtendimentoStatus = "active"
	StatusClosed  AtendimentoStatus = "closed"
)

type SenderType string

const (
	SenderClient SenderType = "client"
	SenderAgent  SenderType = "agent"
	SenderSystem SenderType = "system"
)

func (s SenderType) Valid() bool {
	switch s {
	case SenderClient, SenderAgent, SenderSystem:
		return true
	}
	return false
}

// Ptr returns a pointer to v, handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
