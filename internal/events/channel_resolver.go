package events

// ChannelResolver determines which Redis channels a mirrored event is published to
type ChannelResolver interface {
	ResolveChannels(event, atendimentoID string) []string
}

// HybridChannelResolver publishes every event on the global feed and, when the event
// belongs to a conversation, on that conversation's channel as well.
type HybridChannelResolver struct {
	global string
}

func NewHybridChannelResolver(global string) *HybridChannelResolver {
	return &HybridChannelResolver{global: global}
}

func (r *HybridChannelResolver) ResolveChannels(event, atendimentoID string) []string {
	channels := []string{r.global}
	if atendimentoID != "" {
		channels = append(channels, ChannelPrefixAtendimento+atendimentoID)
	}
	return channels
}
