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

type ProposalTxHandler struct {
	logger cmtlog.Logger

	senderSet map[uint64]bool
}

func NewProposalTxHandler(logger cmtlog.Logger) (h *ProposalTxHandler) {
	logger = logger.With("module", "proposalTx")
	h = &ProposalTxHandler{
		logger:    logger,
		senderSet: make(map[uint64]bool),
	}
	return
}

func (h *ProposalTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.ProposalTx)
	_, err1 := st.Propose(stx, btx.Sender, true, now)
	if err1 != nil {
		h.logger.Info("CheckTx ProposalTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *ProposalTxHandler) NewContext(ctx context.Context) {
	h.senderSet = make(map[uint64]bool)
}

func (h *ProposalTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error) {
	if _, ok := h.senderSet[btx.Sender]; ok {
		return nil, state.ErrOneActionInOneBlock
	}
	stx := btx.Tx.(*tx.ProposalTx)
	event, err := st.Propose(stx, btx.Sender, false, now)
	if err != nil {
		return nil, err
	}
	h.senderSet[btx.Sender] = true
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventProposal(event)}
	}
	return
}

func (h *ProposalTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx, now)
}

func (h *ProposalTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx, now)
}
