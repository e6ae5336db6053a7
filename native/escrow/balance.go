package escrow

import "math/big"

// GenericBalance is a canonical multiset of asset amounts: native coins keyed
// by denomination and token amounts keyed by contract identifier. Keys are
// unique within each collection and entries keep their first-appearance
// order.
type GenericBalance struct {
	Native []Coin        `json:"native"`
	Tokens []TokenAmount `json:"tokens"`
}

// Add merges the supplied funds into the balance. Existing entries are
// incremented in place, new keys are appended. This is the only path by
// which amounts are combined, so nothing is silently dropped.
func (b *GenericBalance) Add(delta Funds) {
	switch funds := delta.(type) {
	case NativeFunds:
		for _, coin := range funds {
			b.addCoin(coin)
		}
	case TokenFunds:
		b.addToken(TokenAmount(funds))
	}
}

func (b *GenericBalance) addCoin(coin Coin) {
	amount := cloneAmount(coin.Amount)
	for i := range b.Native {
		if b.Native[i].Denom == coin.Denom {
			b.Native[i].Amount = new(big.Int).Add(b.Native[i].Amount, amount)
			return
		}
	}
	b.Native = append(b.Native, Coin{Denom: coin.Denom, Amount: amount})
}

func (b *GenericBalance) addToken(token TokenAmount) {
	amount := cloneAmount(token.Amount)
	for i := range b.Tokens {
		if b.Tokens[i].Address == token.Address {
			b.Tokens[i].Amount = new(big.Int).Add(b.Tokens[i].Amount, amount)
			return
		}
	}
	b.Tokens = append(b.Tokens, TokenAmount{Address: token.Address, Amount: amount})
}

// IsEmpty reports whether the balance carries no entries at all.
func (b GenericBalance) IsEmpty() bool {
	return len(b.Native) == 0 && len(b.Tokens) == 0
}

// Clone returns a deep copy of the balance.
func (b GenericBalance) Clone() GenericBalance {
	clone := GenericBalance{}
	if len(b.Native) > 0 {
		clone.Native = make([]Coin, len(b.Native))
		for i, coin := range b.Native {
			clone.Native[i] = Coin{Denom: coin.Denom, Amount: cloneAmount(coin.Amount)}
		}
	}
	if len(b.Tokens) > 0 {
		clone.Tokens = make([]TokenAmount, len(b.Tokens))
		for i, token := range b.Tokens {
			clone.Tokens[i] = TokenAmount{Address: token.Address, Amount: cloneAmount(token.Amount)}
		}
	}
	return clone
}

// Equal reports key-wise equality of the two balances irrespective of entry
// order.
func (b GenericBalance) Equal(other GenericBalance) bool {
	if len(b.Native) != len(other.Native) || len(b.Tokens) != len(other.Tokens) {
		return false
	}
	native := make(map[string]*big.Int, len(other.Native))
	for _, coin := range other.Native {
		native[coin.Denom] = cloneAmount(coin.Amount)
	}
	for _, coin := range b.Native {
		amount, ok := native[coin.Denom]
		if !ok || amount.Cmp(cloneAmount(coin.Amount)) != 0 {
			return false
		}
	}
	tokens := make(map[string]*big.Int, len(other.Tokens))
	for _, token := range other.Tokens {
		tokens[token.Address] = cloneAmount(token.Amount)
	}
	for _, token := range b.Tokens {
		amount, ok := tokens[token.Address]
		if !ok || amount.Cmp(cloneAmount(token.Amount)) != 0 {
			return false
		}
	}
	return true
}

// Normalize returns a canonical copy of the balance: amounts must be
// non-negative, duplicate keys are folded into a single entry, and entries
// keep their first-appearance order. Every caller-supplied balance passes
// through here before it is stored or compared.
func (b GenericBalance) Normalize() (GenericBalance, error) {
	for _, coin := range b.Native {
		if coin.Amount != nil && coin.Amount.Sign() < 0 {
			return GenericBalance{}, ErrInvalidAmount
		}
	}
	for _, token := range b.Tokens {
		if token.Amount != nil && token.Amount.Sign() < 0 {
			return GenericBalance{}, ErrInvalidAmount
		}
	}
	normalized := GenericBalance{}
	normalized.merge(b)
	return normalized, nil
}

// merge folds every entry of src into the balance, preserving first-seen
// order.
func (b *GenericBalance) merge(src GenericBalance) {
	if len(src.Native) > 0 {
		b.Add(NativeFunds(src.Native))
	}
	for _, token := range src.Tokens {
		b.Add(TokenFunds(token))
	}
}

// AggregateFrom folds every milestone's amount, in milestone order, starting
// from the empty balance.
func AggregateFrom(milestones []*Milestone) GenericBalance {
	total := GenericBalance{}
	for _, m := range milestones {
		if m == nil {
			continue
		}
		total.merge(m.Amount)
	}
	return total
}

// OutstandingFrom folds the amounts of milestones that have not been
// approved yet. It backs the balance invariant: a record's balance is always
// the total still owed.
func OutstandingFrom(milestones []*Milestone) GenericBalance {
	total := GenericBalance{}
	for _, m := range milestones {
		if m == nil || m.Completed {
			continue
		}
		total.merge(m.Amount)
	}
	return total
}

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
