package hub

import (
	"github.com/benz16107/BlindSpot/pkg/protocol"
)

// Publisher pushes hazard and status events onto the hub. It satisfies
// the announce.Publisher interface, so the announcement arbiter can
// report hazard state even while speech is muted.
type Publisher struct {
	hub *Hub
}

// NewPublisher wraps a hub as an event sink.
func NewPublisher(h *Hub) *Publisher {
	return &Publisher{hub: h}
}

// PublishHazard broadcasts a hazard state change.
func (p *Publisher) PublishHazard(detected bool, description string) {
	msg, err := protocol.NewHazardMessage(detected, description)
	if err != nil {
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		return
	}
	p.hub.Broadcast(data)
}

// PublishStatus broadcasts a status snapshot.
func (p *Publisher) PublishStatus(status protocol.StatusData) error {
	msg, err := protocol.NewStatusMessage(status)
	if err != nil {
		return err
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	p.hub.Broadcast(data)
	return nil
}
