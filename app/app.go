package app

import (
	"context"
	"encoding/json"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/store"
	"github.com/ethereum/go-ethereum/common"

	"github.com/marleve/boardgov-app/config"
	"github.com/marleve/boardgov-app/state"
	"github.com/marleve/boardgov-app/tx"
	"github.com/marleve/boardgov-app/tx/handler"
	gov_types "github.com/marleve/boardgov-app/types"
)

type finalizeBlock struct {
	Height uint64
	Hash   common.Hash
}

func (b *finalizeBlock) Set(blk *abcitypes.RequestFinalizeBlock) {
	b.Height = uint64(blk.Height)
	b.Hash = common.BytesToHash(blk.Hash)
}

var _ abcitypes.Application = &BoardApp{}

type BoardApp struct {
	cfg    *config.BoardAppConfig
	logger cmtlog.Logger

	db       *state.StateDB
	lastBlk  finalizeBlock
	txHdlrs  map[tx.GovTxType]handler.TxHandler
	queriers map[string]Querier

	st *state.State
}

func NewBoardApp(cfg *config.BoardAppConfig, logger cmtlog.Logger) (app *BoardApp, err error) {
	logger = logger.With("module", "app")

	dir := cfg.Home + "/data"
	db, err := state.NewStateDB(dir, logger)
	if err != nil {
		return nil, err
	}

	app = &BoardApp{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		txHdlrs:  make(map[tx.GovTxType]handler.TxHandler),
		queriers: make(map[string]Querier),
	}
	app.registerTxHandler()
	app.registerQuerier()
	return
}

func (app *BoardApp) Start(bs *store.BlockStore) {
	height := app.db.Header().Height
	if height > 0 {
		blk := bs.LoadBlock(int64(height))
		if blk == nil {
			panic("unexpected BlockStore")
		}
		app.lastBlk.Height = height
		app.lastBlk.Hash = common.BytesToHash(blk.Hash())
	}
}

func (app *BoardApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("boardgov app stopped")
}

func (app *BoardApp) registerTxHandler() {
	app.txHdlrs = map[tx.GovTxType]handler.TxHandler{
		tx.GovTxTypeInitCompany: handler.NewInitCompanyTxHandler(app.logger),
		tx.GovTxTypeShareholder: handler.NewShareholderTxHandler(app.logger),
		tx.GovTxTypeBoard:       handler.NewBoardTxHandler(app.logger),
		tx.GovTxTypeProposal:    handler.NewProposalTxHandler(app.logger),
		tx.GovTxTypeVote:        handler.NewVoteTxHandler(app.logger),
		tx.GovTxTypeFinalize:    handler.NewFinalizeTxHandler(app.logger),
	}
}

func (app *BoardApp) registerQuerier() {
	app.queriers["/accounts/"] = NewAccountQuerier(app.db, app.logger)
	app.queriers["/company/"] = NewCompanyQuerier(app.db, app.logger)
	app.queriers["/proposals/"] = NewProposalQuerier(app.db, app.logger)
	app.queriers["/results/"] = NewResultsQuerier(app.db, app.logger)
	app.queriers["/validators/"] = NewValidatorQuerier(app.db, app.logger)
}

// InitChain seeds the register: every genesis validator becomes an
// active board member whose shares back its consensus power, then the
// optional app_state document may initialize the company and list
// further shareholders.
func (app *BoardApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	st := app.db.NewState()
	st.SetChainId(chain.ChainId)
	for _, v := range chain.Validators {
		shares := uint64(v.Power) * config.SharesPerPower(0)
		err = st.SeedAccount(v.PubKey.GetEd25519(), shares, "", true)
		if err != nil {
			app.logger.Error("InitChain add account fail", "err", err)
			return nil, err
		}
	}
	if len(chain.AppStateBytes) > 0 {
		var gs gov_types.GenesisCompany
		if err = json.Unmarshal(chain.AppStateBytes, &gs); err != nil {
			app.logger.Error("InitChain parse app state fail", "err", err)
			return nil, err
		}
		if gs.Company != nil {
			if err = st.SetGenesisCompany(gs.Company); err != nil {
				app.logger.Error("InitChain set company fail", "err", err)
				return nil, err
			}
		}
		for _, holder := range gs.Holders {
			err = st.SeedAccount(holder.PubKey, holder.Shares, holder.Name, holder.Board)
			if err != nil {
				app.logger.Error("InitChain add holder fail", "err", err)
				return nil, err
			}
		}
	}
	var h common.Hash
	_, err = st.Update()
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	h, err = app.db.SetState(st)
	if err != nil {
		app.logger.Error("InitChain apply state fail", "err", err)
		return nil, err
	}
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *BoardApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	return &abcitypes.ResponseInfo{
		LastBlockHeight:  int64(header.Height),
		LastBlockAppHash: header.Hash,
	}, nil
}

func (app *BoardApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *BoardApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{}, nil
}

func (app *BoardApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return nil, nil
}

func (app *BoardApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return nil, nil
}

func (app *BoardApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return nil, nil
}

func (app *BoardApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return nil, nil
}
