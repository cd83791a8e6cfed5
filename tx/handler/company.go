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

type InitCompanyTxHandler struct {
	logger cmtlog.Logger

	senderSet map[uint64]bool
}

func NewInitCompanyTxHandler(logger cmtlog.Logger) (h *InitCompanyTxHandler) {
	logger = logger.With("module", "initCompanyTx")
	h = &InitCompanyTxHandler{
		logger:    logger,
		senderSet: make(map[uint64]bool),
	}
	return
}

func (h *InitCompanyTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.InitCompanyTx)
	_, err1 := st.InitCompany(stx, btx.Sender, true)
	if err1 != nil {
		h.logger.Info("CheckTx InitCompanyTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *InitCompanyTxHandler) NewContext(ctx context.Context) {
	h.senderSet = make(map[uint64]bool)
}

func (h *InitCompanyTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	if _, ok := h.senderSet[btx.Sender]; ok {
		return nil, state.ErrOneActionInOneBlock
	}
	stx := btx.Tx.(*tx.InitCompanyTx)
	event, err := st.InitCompany(stx, btx.Sender, false)
	if err != nil {
		return nil, err
	}
	h.senderSet[btx.Sender] = true
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventCompanyInit(event)}
	}
	return
}

func (h *InitCompanyTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *InitCompanyTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
