package handler

import (
	"context"
	"time"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"

	"github.com/marleve/boardgov-app/state"
	"github.com/marleve/boardgov-app/tx"
	"github.com/marleve/boardgov-app/types"
)

// FinalizeTxHandler settles proposals past their deadline. The settled
// set dedups a second finalize of the same proposal inside one block
// before the status flip is visible to the next tx.
type FinalizeTxHandler struct {
	logger cmtlog.Logger

	settledSet map[uint64]bool
}

func NewFinalizeTxHandler(logger cmtlog.Logger) (h *FinalizeTxHandler) {
	logger = logger.With("module", "finalizeTx")
	h = &FinalizeTxHandler{
		logger:     logger,
		settledSet: make(map[uint64]bool),
	}
	return
}

func (h *FinalizeTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.FinalizeTx)
	_, err1 := st.Finalize(stx, btx.Sender, true, now)
	if err1 != nil {
		h.logger.Info("CheckTx FinalizeTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *FinalizeTxHandler) NewContext(ctx context.Context) {
	h.settledSet = make(map[uint64]bool)
}

func (h *FinalizeTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error) {
	stx := btx.Tx.(*tx.FinalizeTx)
	if _, ok := h.settledSet[stx.Proposal]; ok {
		return nil, state.ErrProposalSettled
	}
	event, err := st.Finalize(stx, btx.Sender, false, now)
	if err != nil {
		return nil, err
	}
	h.settledSet[stx.Proposal] = true
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventSettleProposal(event)}
	}
	return
}

func (h *FinalizeTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx, now)
}

func (h *FinalizeTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx, now)
}
