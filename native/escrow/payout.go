package escrow

// TransferInstruction describes one asset movement to be executed by the
// external ledger after the operation commits. Exactly one of Native or
// Token is set.
type TransferInstruction struct {
	To     string       `json:"to"`
	Native []Coin       `json:"native,omitempty"`
	Token  *TokenAmount `json:"token,omitempty"`
}

// buildTransfers turns a resolved balance into the ordered instruction list:
// a single instruction carrying the full native batch (in stored order) when
// non-empty, followed by one instruction per distinct token contract in
// append order. The ordering is deterministic so downstream accounting can
// inspect instructions positionally.
func buildTransfers(to string, balance GenericBalance) []TransferInstruction {
	instructions := []TransferInstruction{}
	if len(balance.Native) > 0 {
		native := make([]Coin, len(balance.Native))
		for i, coin := range balance.Native {
			native[i] = Coin{Denom: coin.Denom, Amount: cloneAmount(coin.Amount)}
		}
		instructions = append(instructions, TransferInstruction{To: to, Native: native})
	}
	for _, token := range balance.Tokens {
		entry := TokenAmount{Address: token.Address, Amount: cloneAmount(token.Amount)}
		instructions = append(instructions, TransferInstruction{To: to, Token: &entry})
	}
	return instructions
}
