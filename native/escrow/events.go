package escrow

import (
	"escrowd/core/types"
)

const (
	EventTypeCreated           = "escrow.created"
	EventTypeMilestoneCreated  = "escrow.milestone_created"
	EventTypeRecipientSet      = "escrow.recipient_set"
	EventTypeMilestoneApproved = "escrow.milestone_approved"
	EventTypeMilestoneExtended = "escrow.milestone_extended"
	EventTypeRefunded          = "escrow.refunded"
)

// escrowEvent adapts a types.Event to the events.Emitter contract.
type escrowEvent struct {
	evt *types.Event
}

func (e escrowEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

// Event exposes the underlying payload for subscribers that want the
// attributes.
func (e escrowEvent) Event() *types.Event { return e.evt }

func newEvent(eventType string, attrs []types.Attribute) *types.Event {
	return &types.Event{
		Type:       eventType,
		Attributes: append([]types.Attribute(nil), attrs...),
	}
}
