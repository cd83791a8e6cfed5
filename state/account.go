package state

import (
	"github.com/cometbft/cometbft/crypto/ed25519"
)

// Account is a registered participant of the company register: a
// shareholder, optionally sitting on the board. Index is assigned
// sequentially and survives re-registration of the same address.
type Account struct {
	Index  uint64 `json:"index"`
	PubKey []byte `json:"pubKey"`
	Shares uint64 `json:"shares"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Board  bool   `json:"board"`
	Nonce  uint64 `json:"nonce"`
}

func (a *Account) Clone() *Account {
	n := *a
	n.PubKey = make([]byte, len(a.PubKey))
	copy(n.PubKey, a.PubKey)
	return &n
}

func (a *Account) SetPubKey(pkey []byte) {
	if a.PubKey == nil {
		a.PubKey = make([]byte, len(pkey))
	}
	copy(a.PubKey, pkey)
}

func (a *Account) AddrBytes() []byte {
	pk := ed25519.PubKey(a.PubKey[:])
	return pk.Address()[:]
}

func (a *Account) Address() string {
	pk := ed25519.PubKey(a.PubKey[:])
	return pk.Address().String()
}

// Votable reports whether the account may cast votes: it must be an
// active shareholder holding at least one share.
func (a *Account) Votable() bool {
	return a.Active && a.Shares > 0
}

func (a *Account) Verify(msg []byte, sigs [][]byte) (succ bool) {
	if len(sigs) != 1 {
		return false
	}
	pk := ed25519.PubKey(a.PubKey[:])
	return pk.VerifySignature(msg, sigs[0])
}
