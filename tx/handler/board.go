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

type BoardTxHandler struct {
	logger cmtlog.Logger

	senderSet map[uint64]bool
}

func NewBoardTxHandler(logger cmtlog.Logger) (h *BoardTxHandler) {
	logger = logger.With("module", "boardTx")
	h = &BoardTxHandler{
		logger:    logger,
		senderSet: make(map[uint64]bool),
	}
	return
}

func (h *BoardTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.BoardTx)
	_, err1 := st.AddBoard(stx, btx.Sender, true)
	if err1 != nil {
		h.logger.Info("CheckTx BoardTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *BoardTxHandler) NewContext(ctx context.Context) {
	h.senderSet = make(map[uint64]bool)
}

func (h *BoardTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	if _, ok := h.senderSet[btx.Sender]; ok {
		return nil, state.ErrOneActionInOneBlock
	}
	stx := btx.Tx.(*tx.BoardTx)
	event, err := st.AddBoard(stx, btx.Sender, false)
	if err != nil {
		return nil, err
	}
	h.senderSet[btx.Sender] = true
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventBoard(event)}
	}
	return
}

func (h *BoardTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *BoardTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx, now time.Time) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
