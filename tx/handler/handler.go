package handler

import (
	"context"
	"time"

	abcitypes "github.com/cometbft/cometbft/abci/types"

	"github.com/marleve/boardgov-app/state"
	"github.com/marleve/boardgov-app/tx"
)

// TxHandler is implemented once per GovTxType. NewContext resets any
// per-block bookkeeping before a proposal round; now is the block time
// every deadline check runs against.
type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ResponseCheckTx, err error)
	NewContext(ctx context.Context)
	Prepare(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error)
	Process(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error)
}
