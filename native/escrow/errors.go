package escrow

import "errors"

// Operation errors. Every failure is terminal for the operation: the registry
// is left untouched and no transfer instructions are produced. The host
// decides whether to retry a failed request.
var (
	// ErrUnauthorized marks callers that are not allowed to perform the
	// requested transition.
	ErrUnauthorized = errors.New("escrow: unauthorized")
	// ErrInvalidAddress marks account identifiers rejected by the identity
	// validator.
	ErrInvalidAddress = errors.New("escrow: invalid address")
	// ErrNotFound marks lookups for escrow ids with no stored record.
	ErrNotFound = errors.New("escrow: not found")
	// ErrAlreadyInUse marks creation attempts against an occupied id.
	ErrAlreadyInUse = errors.New("escrow: id already in use")
	// ErrInvalidID marks escrow ids outside the 3-20 byte bound.
	ErrInvalidID = errors.New("escrow: invalid id")
	// ErrEmptyBalance marks milestones submitted without any funds attached.
	ErrEmptyBalance = errors.New("escrow: empty balance")
	// ErrInvalidAmount marks balances carrying a negative amount.
	ErrInvalidAmount = errors.New("escrow: invalid amount")
	// ErrEmptyMilestones marks creation attempts with no milestones.
	ErrEmptyMilestones = errors.New("escrow: empty milestones")
	// ErrFundsMismatch marks deposits that do not cover the aggregate
	// milestone balance.
	ErrFundsMismatch = errors.New("escrow: deposit does not match milestone balance")
	// ErrRecipientNotSet marks approvals attempted before a recipient was
	// assigned.
	ErrRecipientNotSet = errors.New("escrow: recipient not set")
	// ErrMilestoneNotFound marks unknown milestone ids on an existing escrow.
	ErrMilestoneNotFound = errors.New("escrow: milestone not found")
	// ErrMilestoneCompleted marks re-approval of an already released
	// milestone. Rejecting instead of no-opping rules out a double payout.
	ErrMilestoneCompleted = errors.New("escrow: milestone already completed")
	// ErrMilestoneExpired marks operations on milestones past their deadline.
	ErrMilestoneExpired = errors.New("escrow: milestone expired")
	// ErrExpired marks operations on escrows past their aggregate deadline.
	ErrExpired = errors.New("escrow: expired")
	// ErrDeadlineNotExtended is returned when deadline shortening is
	// disabled and an extension would move a deadline backwards.
	ErrDeadlineNotExtended = errors.New("escrow: new deadline precedes current deadline")
)
