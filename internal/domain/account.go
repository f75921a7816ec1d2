package domain

import "time"

type AccountID string

// Account mirrors one paper account as the internal directory API reports it.
// Deletion is soft: a deleted account keeps showing up in list responses with
// DeletedAt set, so active-set computations must filter on Active.
type Account struct {
	ID          AccountID
	Name        string
	CashBalance int64
	DeletedAt   *time.Time
}

func (a Account) Active() bool {
	return a.DeletedAt == nil
}

// Credential is an API key pair minted for exactly one account. Re-minting
// yields a fresh independent pair; nothing may assume the old pair still works.
type Credential struct {
	KeyID  string
	Secret string
}

// AccountSnapshot is what the public trading API reports for a credential
// check. Alpaca serves both figures as decimal strings.
type AccountSnapshot struct {
	Cash        string
	BuyingPower string
}

// SlotCredential is a minted pair bound to a pool slot, as persisted locally
// after a reconcile run.
type SlotCredential struct {
	Slot      int
	AccountID AccountID
	KeyID     string
	Secret    string
	MintedAt  time.Time
}
