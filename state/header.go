package state

// StateHeader carries the ledger-wide bookkeeping persisted under
// KeyState: chain identity, last applied block, and the next account
// index. Time is the unix timestamp of the block being applied and is
// the clock every deadline check runs against.
type StateHeader struct {
	ChainId    string `json:"chainId"`
	Height     uint64 `json:"height"`
	Time       int64  `json:"time"`
	AccountIdx uint64 `json:"accountIdx"`
	RootHash   []byte `json:"rootHash"`
	Hash       []byte `json:"hash"`
}

func (h *StateHeader) Clone() *StateHeader {
	n := *h
	n.RootHash = append([]byte(nil), h.RootHash...)
	n.Hash = append([]byte(nil), h.Hash...)
	return &n
}
