package escrow

// EscrowDetails is the read-only projection of a stored escrow record.
type EscrowDetails struct {
	ID             string        `json:"id"`
	Arbiter        string        `json:"arbiter"`
	Recipient      string        `json:"recipient,omitempty"`
	Source         string        `json:"source"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	EndHeight      *uint64       `json:"end_height,omitempty"`
	EndTime        *int64        `json:"end_time,omitempty"`
	NativeBalance  []Coin        `json:"native_balance"`
	TokenBalance   []TokenAmount `json:"token_balance"`
	TokenWhitelist []string      `json:"token_whitelist"`
	Milestones     []*Milestone  `json:"milestones"`
}

// Query exposes read-only projections of the registry for external
// consumption.
type Query struct {
	registry *Registry
}

// NewQuery wraps the registry for read-only access.
func NewQuery(registry *Registry) *Query {
	return &Query{registry: registry}
}

// List returns every escrow id in ascending lexicographic order.
func (q *Query) List() ([]string, error) {
	return q.registry.ListIDs()
}

// EscrowDetails returns the full projection of the escrow stored under id.
func (q *Query) EscrowDetails(id string) (*EscrowDetails, error) {
	esc, err := q.registry.Get(id)
	if err != nil {
		return nil, err
	}
	clone := esc.Clone()
	return &EscrowDetails{
		ID:             id,
		Arbiter:        clone.Arbiter,
		Recipient:      clone.Recipient,
		Source:         clone.Source,
		Title:          clone.Title,
		Description:    clone.Description,
		EndHeight:      clone.EndHeight,
		EndTime:        clone.EndTime,
		NativeBalance:  clone.Balance.Native,
		TokenBalance:   clone.Balance.Tokens,
		TokenWhitelist: clone.TokenWhitelist,
		Milestones:     clone.Milestones,
	}, nil
}

// MilestoneDetails returns a single milestone by escrow and milestone id.
func (q *Query) MilestoneDetails(id, milestoneID string) (*Milestone, error) {
	esc, err := q.registry.Get(id)
	if err != nil {
		return nil, err
	}
	milestone := esc.FindMilestone(milestoneID)
	if milestone == nil {
		return nil, ErrMilestoneNotFound
	}
	return milestone.Clone(), nil
}

// ListMilestones returns the milestone ids of the escrow in append order.
func (q *Query) ListMilestones(id string) ([]string, error) {
	esc, err := q.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return esc.MilestoneIDs(), nil
}
