package escrow

import (
	"errors"
	"math/big"
	"testing"
)

func TestAddNativeMergesByDenom(t *testing.T) {
	balance := GenericBalance{}
	balance.Add(NativeFunds{coin(123, "atom")})
	balance.Add(NativeFunds{coin(456, "atom")})
	balance.Add(NativeFunds{coin(789, "eth")})

	if len(balance.Native) != 2 {
		t.Fatalf("native entries = %d, want 2", len(balance.Native))
	}
	if balance.Native[0].Denom != "atom" || balance.Native[0].Amount.Cmp(big.NewInt(579)) != 0 {
		t.Fatalf("first entry %+v, want 579 atom", balance.Native[0])
	}
	if balance.Native[1].Denom != "eth" || balance.Native[1].Amount.Cmp(big.NewInt(789)) != 0 {
		t.Fatalf("second entry %+v, want 789 eth", balance.Native[1])
	}
}

func TestAddTokensMergesByContract(t *testing.T) {
	balance := GenericBalance{}
	balance.Add(TokenFunds(token(12345, "foo_token")))
	balance.Add(TokenFunds(token(777, "bar_token")))
	balance.Add(TokenFunds(token(23400, "foo_token")))

	if len(balance.Tokens) != 2 {
		t.Fatalf("token entries = %d, want 2", len(balance.Tokens))
	}
	if balance.Tokens[0].Address != "foo_token" || balance.Tokens[0].Amount.Cmp(big.NewInt(35745)) != 0 {
		t.Fatalf("first entry %+v, want 35745 foo_token", balance.Tokens[0])
	}
	if balance.Tokens[1].Address != "bar_token" || balance.Tokens[1].Amount.Cmp(big.NewInt(777)) != 0 {
		t.Fatalf("second entry %+v, want 777 bar_token", balance.Tokens[1])
	}
}

func TestAggregateFromFoldsInMilestoneOrder(t *testing.T) {
	milestones := []*Milestone{
		{ID: "1", Amount: nativeBalance(coin(100, "atom"))},
		{ID: "2", Amount: GenericBalance{Tokens: []TokenAmount{token(40, "foo_token")}}},
		{ID: "3", Amount: nativeBalance(coin(50, "atom"), coin(25, "eth"))},
	}
	total := AggregateFrom(milestones)
	if len(total.Native) != 2 || total.Native[0].Amount.Cmp(big.NewInt(150)) != 0 || total.Native[1].Amount.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("native aggregate: %+v", total.Native)
	}
	if len(total.Tokens) != 1 || total.Tokens[0].Amount.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("token aggregate: %+v", total.Tokens)
	}
}

func TestOutstandingSkipsCompleted(t *testing.T) {
	milestones := []*Milestone{
		{ID: "1", Amount: nativeBalance(coin(100, "atom")), Completed: true},
		{ID: "2", Amount: nativeBalance(coin(60, "atom"))},
	}
	outstanding := OutstandingFrom(milestones)
	if len(outstanding.Native) != 1 || outstanding.Native[0].Amount.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("outstanding: %+v", outstanding.Native)
	}
}

func TestNormalizeFoldsDuplicatesAndRejectsNegatives(t *testing.T) {
	balance := GenericBalance{
		Native: []Coin{coin(60, "atom"), coin(40, "atom"), coin(5, "eth")},
		Tokens: []TokenAmount{token(1, "foo_token"), token(2, "foo_token")},
	}
	normalized, err := balance.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(normalized.Native) != 2 || normalized.Native[0].Amount.Cmp(big.NewInt(100)) != 0 || normalized.Native[1].Denom != "eth" {
		t.Fatalf("native entries not folded: %+v", normalized.Native)
	}
	if len(normalized.Tokens) != 1 || normalized.Tokens[0].Amount.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("token entries not folded: %+v", normalized.Tokens)
	}

	if _, err := (GenericBalance{Native: []Coin{coin(-1, "atom")}}).Normalize(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative coin: got %v, want ErrInvalidAmount", err)
	}
	if _, err := (GenericBalance{Tokens: []TokenAmount{token(-1, "foo_token")}}).Normalize(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative token: got %v, want ErrInvalidAmount", err)
	}
}

func TestBalanceEqualIgnoresOrder(t *testing.T) {
	a := GenericBalance{Native: []Coin{coin(1, "atom"), coin(2, "eth")}}
	b := GenericBalance{Native: []Coin{coin(2, "eth"), coin(1, "atom")}}
	if !a.Equal(b) {
		t.Fatal("balances with reordered entries should be equal")
	}
	c := GenericBalance{Native: []Coin{coin(1, "atom"), coin(3, "eth")}}
	if a.Equal(c) {
		t.Fatal("differing amounts should not be equal")
	}
}

func TestBalanceAddDoesNotAliasInput(t *testing.T) {
	source := coin(10, "atom")
	balance := GenericBalance{}
	balance.Add(NativeFunds{source})
	source.Amount.SetInt64(999)
	if balance.Native[0].Amount.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("stored amount aliases caller value: %v", balance.Native[0].Amount)
	}
}

func TestDeadlineExceededStrictInequality(t *testing.T) {
	height := uintPtr(100)
	ts := intPtr(1_000)

	if deadlineExceeded(height, nil, 100, 0) {
		t.Fatal("height at deadline should not be expired")
	}
	if !deadlineExceeded(height, nil, 101, 0) {
		t.Fatal("height past deadline should be expired")
	}
	if deadlineExceeded(nil, ts, 0, 1_000) {
		t.Fatal("time at deadline should not be expired")
	}
	if !deadlineExceeded(nil, ts, 0, 1_001) {
		t.Fatal("time past deadline should be expired")
	}
	if deadlineExceeded(nil, nil, 1<<60, 1<<60) {
		t.Fatal("no deadline set can never expire")
	}
}

func TestMaxDeadlines(t *testing.T) {
	milestones := []*Milestone{
		{ID: "1", EndHeight: uintPtr(50)},
		{ID: "2", EndHeight: uintPtr(80), EndTime: intPtr(2_000)},
		{ID: "3", EndTime: intPtr(1_500)},
	}
	height, ts := maxDeadlines(milestones)
	if height == nil || *height != 80 {
		t.Fatalf("max height %v, want 80", height)
	}
	if ts == nil || *ts != 2_000 {
		t.Fatalf("max time %v, want 2000", ts)
	}

	height, ts = maxDeadlines([]*Milestone{{ID: "1"}})
	if height != nil || ts != nil {
		t.Fatalf("expected nil deadlines, got %v %v", height, ts)
	}
}

func TestEscrowCloneIsDeep(t *testing.T) {
	esc := &Escrow{
		Arbiter:        "arbiter",
		Source:         "source",
		Balance:        nativeBalance(coin(5, "atom")),
		TokenWhitelist: []string{"foo_token"},
		Milestones:     []*Milestone{{ID: "1", Amount: nativeBalance(coin(5, "atom"))}},
		EndTime:        intPtr(1_000),
	}
	clone := esc.Clone()
	clone.Balance.Native[0].Amount.SetInt64(999)
	clone.Milestones[0].Completed = true
	*clone.EndTime = 2_000
	clone.TokenWhitelist[0] = "bar_token"

	if esc.Balance.Native[0].Amount.Cmp(big.NewInt(5)) != 0 {
		t.Fatal("clone shares balance")
	}
	if esc.Milestones[0].Completed {
		t.Fatal("clone shares milestones")
	}
	if *esc.EndTime != 1_000 {
		t.Fatal("clone shares deadline pointer")
	}
	if esc.TokenWhitelist[0] != "foo_token" {
		t.Fatal("clone shares whitelist")
	}
}

func TestValidateID(t *testing.T) {
	if err := ValidateID("abc"); err != nil {
		t.Fatalf("3-byte id rejected: %v", err)
	}
	if err := ValidateID("12345678901234567890"); err != nil {
		t.Fatalf("20-byte id rejected: %v", err)
	}
	for _, id := range []string{"", "ab", "123456789012345678901", "  abc"} {
		if err := ValidateID(id); err == nil {
			t.Fatalf("id %q accepted", id)
		}
	}
}
