package escrow

import (
	"math/big"
	"strings"
)

// Coin is an amount of the ledger's base asset, keyed by denomination.
type Coin struct {
	Denom  string   `json:"denom"`
	Amount *big.Int `json:"amount"`
}

// TokenAmount is an amount held in a third-party fungible-token contract,
// keyed by that contract's account identifier.
type TokenAmount struct {
	Address string   `json:"address"`
	Amount  *big.Int `json:"amount"`
}

// Funds is the closed set of asset bundles a caller can attach to an
// operation: a batch of native coins or a single token transfer. The balance
// aggregator is the only consumer.
type Funds interface {
	isFunds()
}

// NativeFunds is a batch of native coins attached to a request.
type NativeFunds []Coin

func (NativeFunds) isFunds() {}

// TokenFunds is a single token-contract transfer attached to a request.
type TokenFunds TokenAmount

func (TokenFunds) isFunds() {}

// Milestone is a sub-unit of an escrow with its own amount and optional
// independent deadline. IDs are assigned by the engine as the 1-based
// position within the escrow and are stable because milestones are only ever
// appended.
type Milestone struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Amount      GenericBalance `json:"amount"`
	EndHeight   *uint64        `json:"end_height,omitempty"`
	EndTime     *int64         `json:"end_time,omitempty"`
	Completed   bool           `json:"is_completed"`
}

// Clone returns a deep copy so callers can mutate freely.
func (m *Milestone) Clone() *Milestone {
	if m == nil {
		return nil
	}
	clone := *m
	clone.Amount = m.Amount.Clone()
	if m.EndHeight != nil {
		h := *m.EndHeight
		clone.EndHeight = &h
	}
	if m.EndTime != nil {
		t := *m.EndTime
		clone.EndTime = &t
	}
	return &clone
}

// Expired reports whether the milestone's own deadline has passed.
func (m *Milestone) Expired(height uint64, now int64) bool {
	if m == nil {
		return false
	}
	return deadlineExceeded(m.EndHeight, m.EndTime, height, now)
}

// Escrow is a persisted record holding custodied multi-asset funds pending
// milestone-gated release or refund.
type Escrow struct {
	// Arbiter approves milestones, extends deadlines, assigns the recipient
	// and refunds before expiration.
	Arbiter string `json:"arbiter"`
	// Recipient receives released funds. Empty until assigned.
	Recipient string `json:"recipient,omitempty"`
	// Source funded the escrow and receives refunds.
	Source      string `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// EndHeight/EndTime mirror the maximum milestone deadlines. Nil when no
	// milestone sets the respective bound.
	EndHeight *uint64 `json:"end_height,omitempty"`
	EndTime   *int64  `json:"end_time,omitempty"`
	// Balance is the aggregate of all outstanding milestone amounts.
	Balance GenericBalance `json:"balance"`
	// TokenWhitelist holds every token contract the escrow accepts. Entries
	// are appended, never removed, and never duplicated.
	TokenWhitelist []string     `json:"token_whitelist"`
	Milestones     []*Milestone `json:"milestones"`
}

// Clone returns a deep copy of the escrow record.
func (e *Escrow) Clone() *Escrow {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Balance = e.Balance.Clone()
	if e.EndHeight != nil {
		h := *e.EndHeight
		clone.EndHeight = &h
	}
	if e.EndTime != nil {
		t := *e.EndTime
		clone.EndTime = &t
	}
	if len(e.TokenWhitelist) > 0 {
		clone.TokenWhitelist = append([]string(nil), e.TokenWhitelist...)
	}
	if len(e.Milestones) > 0 {
		clone.Milestones = make([]*Milestone, len(e.Milestones))
		for i, m := range e.Milestones {
			clone.Milestones[i] = m.Clone()
		}
	}
	return &clone
}

// Expired reports whether the escrow as a whole has passed its aggregate
// deadline.
func (e *Escrow) Expired(height uint64, now int64) bool {
	if e == nil {
		return false
	}
	return deadlineExceeded(e.EndHeight, e.EndTime, height, now)
}

// Complete reports whether every milestone has been approved.
func (e *Escrow) Complete() bool {
	if e == nil {
		return false
	}
	for _, m := range e.Milestones {
		if m == nil || !m.Completed {
			return false
		}
	}
	return true
}

// FindMilestone returns the milestone with the supplied id, or nil.
func (e *Escrow) FindMilestone(id string) *Milestone {
	if e == nil {
		return nil
	}
	for _, m := range e.Milestones {
		if m != nil && m.ID == id {
			return m
		}
	}
	return nil
}

// MilestoneIDs returns the milestone ids in append order.
func (e *Escrow) MilestoneIDs() []string {
	if e == nil {
		return nil
	}
	ids := make([]string, 0, len(e.Milestones))
	for _, m := range e.Milestones {
		if m != nil {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// whitelistToken appends the token contract if it is not already present.
func (e *Escrow) whitelistToken(address string) {
	for _, existing := range e.TokenWhitelist {
		if existing == address {
			return
		}
	}
	e.TokenWhitelist = append(e.TokenWhitelist, address)
}

// updateDerived recomputes the fields the record carries redundantly: the
// outstanding balance and the aggregate deadlines.
func (e *Escrow) updateDerived() {
	e.Balance = OutstandingFrom(e.Milestones)
	e.EndHeight, e.EndTime = maxDeadlines(e.Milestones)
}

// ValidateID enforces the 3-20 byte bound on caller-supplied escrow ids.
func ValidateID(id string) error {
	if n := len(id); n < 3 || n > 20 {
		return ErrInvalidID
	}
	if strings.TrimSpace(id) != id {
		return ErrInvalidID
	}
	return nil
}
