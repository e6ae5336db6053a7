package escrow

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"escrowd/core/events"
	"escrowd/core/types"
)

// Result is the successful outcome of an engine operation: the ordered
// audit attributes plus any transfer instructions the host-side ledger
// executor must carry out. Instructions are data, never executed in-process;
// the registry mutation is committed before the caller ever acts on them.
type Result struct {
	Attributes []types.Attribute     `json:"attributes"`
	Transfers  []TransferInstruction `json:"transfers,omitempty"`
}

// MilestoneSpec describes a milestone submitted at escrow creation. The
// engine assigns the id.
type MilestoneSpec struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Amount      GenericBalance `json:"amount"`
	EndHeight   *uint64        `json:"end_height,omitempty"`
	EndTime     *int64         `json:"end_time,omitempty"`
}

// CreateParams carries the Create request payload.
type CreateParams struct {
	ID             string          `json:"id"`
	Arbiter        string          `json:"arbiter"`
	Recipient      string          `json:"recipient,omitempty"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	TokenWhitelist []string        `json:"token_whitelist,omitempty"`
	Milestones     []MilestoneSpec `json:"milestones"`
}

// MilestoneParams carries the CreateMilestone request payload.
type MilestoneParams struct {
	EscrowID    string         `json:"escrow_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Amount      GenericBalance `json:"amount"`
	EndHeight   *uint64        `json:"end_height,omitempty"`
	EndTime     *int64         `json:"end_time,omitempty"`
}

// Engine is the escrow state machine. It reads and writes the registry,
// recomputes derived balances and deadlines, and produces transfer
// instructions on release and refund paths. Each operation is atomic: it
// performs exactly one registry write or delete, after every check has
// passed.
type Engine struct {
	registry  *Registry
	validator IdentityValidator
	emitter   events.Emitter
	nowFn     func() int64
	heightFn  func() uint64

	// legacyFundsCheck reproduces the first-entry-only deposit comparison of
	// earlier deployments instead of full-aggregate equality.
	legacyFundsCheck bool
	// rejectShortening refuses deadline extensions that would move a
	// deadline backwards.
	rejectShortening bool
}

// NewEngine wires the state machine with its registry and identity
// validator. Events default to a no-op emitter; the clock and height sources
// default to wall time and height zero.
func NewEngine(registry *Registry, validator IdentityValidator) *Engine {
	return &Engine{
		registry:  registry,
		validator: validator,
		emitter:   events.NoopEmitter{},
		nowFn:     func() int64 { return time.Now().Unix() },
		heightFn:  func() uint64 { return 0 },
	}
}

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source. Primarily for deterministic tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetHeightFunc overrides the block-height source supplied by the host.
func (e *Engine) SetHeightFunc(height func() uint64) {
	if height == nil {
		e.heightFn = func() uint64 { return 0 }
		return
	}
	e.heightFn = height
}

// SetLegacyFundsCheck toggles the narrow first-entry deposit comparison kept
// for compatibility with earlier deployments.
func (e *Engine) SetLegacyFundsCheck(enabled bool) { e.legacyFundsCheck = enabled }

// SetRejectDeadlineShortening refuses extensions that move a milestone
// deadline backwards. Shortening is permitted by default.
func (e *Engine) SetRejectDeadlineShortening(enabled bool) { e.rejectShortening = enabled }

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) height() uint64 {
	if e == nil || e.heightFn == nil {
		return 0
	}
	return e.heightFn()
}

func (e *Engine) emit(eventType string, attrs []types.Attribute) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(escrowEvent{evt: newEvent(eventType, attrs)})
}

func (e *Engine) validateAccount(raw string) (string, error) {
	account, err := e.validator.Validate(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return account, nil
}

// Create validates the submitted milestones against the deposit, resolves
// every identity and stores a fresh escrow record. Fails with
// ErrAlreadyInUse when the id is occupied.
func (e *Engine) Create(caller string, params CreateParams, deposit GenericBalance) (*Result, error) {
	if err := ValidateID(params.ID); err != nil {
		return nil, err
	}
	if len(params.Milestones) == 0 {
		return nil, ErrEmptyMilestones
	}
	deposit, err := deposit.Normalize()
	if err != nil {
		return nil, err
	}

	milestones := make([]*Milestone, len(params.Milestones))
	for i, spec := range params.Milestones {
		amount, err := spec.Amount.Normalize()
		if err != nil {
			return nil, err
		}
		if amount.IsEmpty() {
			return nil, ErrEmptyBalance
		}
		milestones[i] = &Milestone{
			ID:          strconv.Itoa(i + 1),
			Title:       spec.Title,
			Description: spec.Description,
			Amount:      amount,
			EndHeight:   spec.EndHeight,
			EndTime:     spec.EndTime,
		}
	}
	aggregate := AggregateFrom(milestones)
	if aggregate.IsEmpty() {
		return nil, ErrEmptyBalance
	}
	if !e.fundsMatch(deposit, aggregate) {
		return nil, ErrFundsMismatch
	}

	arbiter, err := e.validateAccount(params.Arbiter)
	if err != nil {
		return nil, err
	}
	recipient := ""
	if strings.TrimSpace(params.Recipient) != "" {
		recipient, err = e.validateAccount(params.Recipient)
		if err != nil {
			return nil, err
		}
	}

	esc := &Escrow{
		Arbiter:     arbiter,
		Recipient:   recipient,
		Source:      caller,
		Title:       params.Title,
		Description: params.Description,
		Milestones:  milestones,
	}
	for _, raw := range params.TokenWhitelist {
		address, err := e.validateAccount(raw)
		if err != nil {
			return nil, err
		}
		esc.whitelistToken(address)
	}
	for _, token := range aggregate.Tokens {
		esc.whitelistToken(token.Address)
	}
	esc.updateDerived()

	if err := e.registry.Create(params.ID, esc); err != nil {
		return nil, err
	}

	attrs := []types.Attribute{
		{Key: "action", Value: "create"},
		{Key: "id", Value: params.ID},
	}
	e.emit(EventTypeCreated, attrs)
	return &Result{Attributes: attrs}, nil
}

// CreateMilestone appends a milestone to an existing escrow. Only the
// arbiter may add milestones; token deposits grow the whitelist.
func (e *Engine) CreateMilestone(caller string, params MilestoneParams, deposit GenericBalance) (*Result, error) {
	esc, err := e.registry.Get(params.EscrowID)
	if err != nil {
		return nil, err
	}
	if caller != esc.Arbiter {
		return nil, ErrUnauthorized
	}
	amount, err := params.Amount.Normalize()
	if err != nil {
		return nil, err
	}
	if amount.IsEmpty() {
		return nil, ErrEmptyBalance
	}
	deposit, err = deposit.Normalize()
	if err != nil {
		return nil, err
	}
	// The new milestone is funded by this deposit, so the same comparison
	// used at creation applies.
	if !e.fundsMatch(deposit, amount) {
		return nil, ErrFundsMismatch
	}

	for _, token := range deposit.Tokens {
		esc.whitelistToken(token.Address)
	}
	for _, token := range amount.Tokens {
		esc.whitelistToken(token.Address)
	}

	milestoneID := strconv.Itoa(len(esc.Milestones) + 1)
	esc.Milestones = append(esc.Milestones, &Milestone{
		ID:          milestoneID,
		Title:       params.Title,
		Description: params.Description,
		Amount:      amount,
		EndHeight:   params.EndHeight,
		EndTime:     params.EndTime,
	})
	esc.updateDerived()

	if err := e.registry.Put(params.EscrowID, esc); err != nil {
		return nil, err
	}

	attrs := []types.Attribute{
		{Key: "action", Value: "create_milestone"},
		{Key: "escrow_id", Value: params.EscrowID},
		{Key: "milestone_id", Value: milestoneID},
	}
	e.emit(EventTypeMilestoneCreated, attrs)
	return &Result{Attributes: attrs}, nil
}

// SetRecipient assigns or replaces the release target. Arbiter only.
func (e *Engine) SetRecipient(caller, id, recipient string) (*Result, error) {
	esc, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if caller != esc.Arbiter {
		return nil, ErrUnauthorized
	}
	validated, err := e.validateAccount(recipient)
	if err != nil {
		return nil, err
	}
	esc.Recipient = validated

	if err := e.registry.Put(id, esc); err != nil {
		return nil, err
	}

	attrs := []types.Attribute{
		{Key: "action", Value: "set_recipient"},
		{Key: "id", Value: id},
		{Key: "recipient", Value: validated},
	}
	e.emit(EventTypeRecipientSet, attrs)
	return &Result{Attributes: attrs}, nil
}

// ApproveMilestone certifies a milestone and releases its amount to the
// recipient. Approving the last outstanding milestone cascades into full
// completion: the record is deleted and a single release of the entire
// remaining balance supersedes the per-milestone instructions.
func (e *Engine) ApproveMilestone(caller, id, milestoneID string) (*Result, error) {
	esc, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if caller != esc.Arbiter {
		return nil, ErrUnauthorized
	}
	height, now := e.height(), e.now()
	if esc.Expired(height, now) {
		return nil, ErrExpired
	}
	milestone := esc.FindMilestone(milestoneID)
	if milestone == nil {
		return nil, ErrMilestoneNotFound
	}
	if milestone.Expired(height, now) {
		return nil, ErrMilestoneExpired
	}
	if milestone.Completed {
		return nil, ErrMilestoneCompleted
	}
	if esc.Recipient == "" {
		return nil, ErrRecipientNotSet
	}

	milestone.Completed = true

	if esc.Complete() {
		// Final approval: one release for everything still owed, then the
		// record is gone. The id becomes reusable only through an explicit
		// new Create.
		transfers := buildTransfers(esc.Recipient, esc.Balance)
		if err := e.registry.Delete(id); err != nil {
			return nil, err
		}
		attrs := []types.Attribute{
			{Key: "action", Value: "approve_milestone"},
			{Key: "id", Value: id},
			{Key: "is_escrow_complete", Value: "true"},
		}
		e.emit(EventTypeMilestoneApproved, attrs)
		return &Result{Attributes: attrs, Transfers: transfers}, nil
	}

	transfers := buildTransfers(esc.Recipient, milestone.Amount)
	esc.updateDerived()
	if err := e.registry.Put(id, esc); err != nil {
		return nil, err
	}

	attrs := []types.Attribute{
		{Key: "action", Value: "approve_milestone"},
		{Key: "id", Value: id},
		{Key: "milestone_id", Value: milestoneID},
	}
	e.emit(EventTypeMilestoneApproved, attrs)
	return &Result{Attributes: attrs, Transfers: transfers}, nil
}

// ExtendMilestone overwrites whichever deadline fields are supplied and
// recomputes the escrow-level aggregates. Arbiter only; the milestone must
// still be live.
func (e *Engine) ExtendMilestone(caller, id, milestoneID string, endHeight *uint64, endTime *int64) (*Result, error) {
	esc, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if caller != esc.Arbiter {
		return nil, ErrUnauthorized
	}
	height, now := e.height(), e.now()
	if esc.Expired(height, now) {
		return nil, ErrExpired
	}
	milestone := esc.FindMilestone(milestoneID)
	if milestone == nil {
		return nil, ErrMilestoneNotFound
	}
	if milestone.Expired(height, now) {
		return nil, ErrMilestoneExpired
	}
	if e.rejectShortening {
		if endHeight != nil && milestone.EndHeight != nil && *endHeight < *milestone.EndHeight {
			return nil, ErrDeadlineNotExtended
		}
		if endTime != nil && milestone.EndTime != nil && *endTime < *milestone.EndTime {
			return nil, ErrDeadlineNotExtended
		}
	}
	if endHeight != nil {
		h := *endHeight
		milestone.EndHeight = &h
	}
	if endTime != nil {
		t := *endTime
		milestone.EndTime = &t
	}
	esc.updateDerived()

	if err := e.registry.Put(id, esc); err != nil {
		return nil, err
	}

	attrs := []types.Attribute{
		{Key: "action", Value: "extend_milestone"},
		{Key: "id", Value: id},
		{Key: "milestone_id", Value: milestoneID},
	}
	e.emit(EventTypeMilestoneExtended, attrs)
	return &Result{Attributes: attrs}, nil
}

// Refund deletes the escrow and returns the entire remaining balance to the
// source. The arbiter may refund any time; anyone may refund once the
// escrow has expired.
func (e *Engine) Refund(caller, id string) (*Result, error) {
	esc, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if !esc.Expired(e.height(), e.now()) && caller != esc.Arbiter {
		return nil, ErrUnauthorized
	}

	transfers := buildTransfers(esc.Source, esc.Balance)
	if err := e.registry.Delete(id); err != nil {
		return nil, err
	}

	attrs := []types.Attribute{
		{Key: "action", Value: "refund"},
		{Key: "id", Value: id},
		{Key: "to", Value: esc.Source},
	}
	e.emit(EventTypeRefunded, attrs)
	return &Result{Attributes: attrs, Transfers: transfers}, nil
}

// fundsMatch compares the deposit against the aggregate milestone balance.
// Strict mode requires key-wise equality. Legacy mode compares only the first
// native denomination and the first token entry present.
func (e *Engine) fundsMatch(deposit, aggregate GenericBalance) bool {
	if !e.legacyFundsCheck {
		return deposit.Equal(aggregate)
	}
	if deposit.IsEmpty() {
		return false
	}
	if len(deposit.Native) > 0 {
		if len(aggregate.Native) == 0 {
			return false
		}
		if cloneAmount(deposit.Native[0].Amount).Cmp(cloneAmount(aggregate.Native[0].Amount)) != 0 {
			return false
		}
	}
	if len(deposit.Tokens) > 0 {
		if len(aggregate.Tokens) == 0 {
			return false
		}
		if cloneAmount(deposit.Tokens[0].Amount).Cmp(cloneAmount(aggregate.Tokens[0].Amount)) != 0 {
			return false
		}
	}
	return true
}
