package tx

import (
	"errors"
)

type GovTxType uint8

const (
	GovTxTypeUnknown     GovTxType = 0
	GovTxTypeInitCompany GovTxType = 1
	GovTxTypeShareholder GovTxType = 2
	GovTxTypeBoard       GovTxType = 3
	GovTxTypeProposal    GovTxType = 4
	GovTxTypeVote        GovTxType = 5
	GovTxTypeFinalize    GovTxType = 6
)

const (
	GovTxVersion0 uint8 = 0
	GovTxVersion1 uint8 = 1
)

var (
	ErrInvalidTx         = errors.New("invalid tx")
	ErrUnsupportedTxType = errors.New("unsupported tx type")
	ErrUnmatchedTxType   = errors.New("unmatched tx type")

	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
	ErrUnsupportedTxData    = errors.New("unsupported tx data")
)
