package tx

import (
	"encoding/json"
)

// GovTx is the signed envelope every ledger transaction travels in.
// Sender is the account index of the signer; Sig holds one ed25519
// signature over the json envelope salted with the chain id.
type GovTx struct {
	Version uint8     `json:"version"`
	Type    GovTxType `json:"type"`
	Nonce   uint64    `json:"nonce"`
	Sender  uint64    `json:"sender"`
	Tx      any       `json:"tx"`
	Sig     [][]byte  `json:"sig"`
}

type InitCompanyTx struct {
	Name        string `json:"name"`
	TotalShares uint64 `json:"totalShares"`
}

type ShareholderTx struct {
	Pubkey []byte `json:"pubkey"`
	Shares uint64 `json:"shares"`
	Name   string `json:"name"`
}

type BoardTx struct {
	Pubkey []byte `json:"pubkey"`
}

type ProposalTx struct {
	Kind       uint8  `json:"kind"`
	Title      string `json:"title"`
	Data       []byte `json:"data"`
	VotingDays uint64 `json:"votingDays"`
}

type VoteTx struct {
	Proposal uint64 `json:"proposal"`
	Choice   uint8  `json:"choice"`
}

type FinalizeTx struct {
	Proposal uint64 `json:"proposal"`
}

type govTxTmpl[Tx any] struct {
	Version uint8     `json:"version"`
	Type    GovTxType `json:"type"`
	Nonce   uint64    `json:"nonce"`
	Sender  uint64    `json:"sender"`
	Tx      Tx        `json:"tx"`
	Sig     [][]byte  `json:"sig"`
}

// SigData returns the bytes to sign: the envelope with the signature
// slot replaced by the chain id, so a signature never validates on
// another chain.
func (tx *GovTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

func parseGovTxType(dat []byte) GovTxType {
	var tx struct {
		Type GovTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return GovTxTypeUnknown
	}
	return tx.Type
}

func unmarshalGovTx[Tx any](dat []byte) (btx *GovTx, err error) {
	var txt govTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	btx = new(GovTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.Sender = txt.Sender
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalGovTx(dat []byte) (btx *GovTx, err error) {
	tp := parseGovTxType(dat)
	switch tp {
	case GovTxTypeInitCompany:
		return unmarshalGovTx[InitCompanyTx](dat)
	case GovTxTypeShareholder:
		return unmarshalGovTx[ShareholderTx](dat)
	case GovTxTypeBoard:
		return unmarshalGovTx[BoardTx](dat)
	case GovTxTypeProposal:
		return unmarshalGovTx[ProposalTx](dat)
	case GovTxTypeVote:
		return unmarshalGovTx[VoteTx](dat)
	case GovTxTypeFinalize:
		return unmarshalGovTx[FinalizeTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalGovTx(btx *GovTx) (dat []byte, err error) {
	return json.Marshal(btx)
}
