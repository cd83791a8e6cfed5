package app

import (
	"context"
	"encoding/json"
	"strings"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"

	"github.com/marleve/boardgov-app/state"
)

func (app *BoardApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = 404
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

func decodeIndex(dat []byte) (idx uint64) {
	for _, v := range dat {
		idx <<= 8
		idx |= uint64(v)
	}
	return
}

type AccountQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewAccountQuerier(db *state.StateDB, logger cmtlog.Logger) (q *AccountQuerier) {
	q = &AccountQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *AccountQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	var a *state.Account
	var height uint64
	if len(req.Data) == 20 {
		a, height, _ = q.db.GetAccountByAddress(req.Data)
	} else if len(req.Data) <= 8 {
		a, height, _ = q.db.GetAccountByIndex(decodeIndex(req.Data))
	}
	if a != nil {
		res.Value, _ = json.Marshal(a)
		res.Height = int64(height)
	} else {
		res.Code = 1
	}
	return
}

type CompanyQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewCompanyQuerier(db *state.StateDB, logger cmtlog.Logger) (q *CompanyQuerier) {
	q = &CompanyQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *CompanyQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	company, height, _ := q.db.GetCompany()
	if company == nil {
		res.Code = 1
		return
	}
	res.Value, _ = json.Marshal(company)
	res.Height = int64(height)
	return
}

type ProposalQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewProposalQuerier(db *state.StateDB, logger cmtlog.Logger) (q *ProposalQuerier) {
	q = &ProposalQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *ProposalQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	proposal, height, err := q.db.GetProposalByIndex(decodeIndex(req.Data))
	if err != nil {
		res.Code = 1
		res.Log = err.Error()
		return res, nil
	}
	res.Value, _ = json.Marshal(proposal)
	res.Height = int64(height)
	return
}

// ResultsQuerier reports the tallies plus the pass verdict. For an
// active proposal the verdict is the live projection, not a settlement.
type ResultsQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewResultsQuerier(db *state.StateDB, logger cmtlog.Logger) (q *ResultsQuerier) {
	q = &ResultsQuerier{
		db:     db,
		logger: logger,
	}
	return
}

type proposalResults struct {
	Proposal     uint64 `json:"proposal"`
	ForVotes     uint64 `json:"forVotes"`
	AgainstVotes uint64 `json:"againstVotes"`
	Passed       bool   `json:"passed"`
	Status       uint64 `json:"status"`
}

func (q *ResultsQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	idx := decodeIndex(req.Data)
	proposal, height, err := q.db.GetProposalByIndex(idx)
	if err != nil {
		res.Code = 1
		res.Log = err.Error()
		return res, nil
	}
	forVotes, againstVotes, passed, err := q.db.State().Results(idx)
	if err != nil {
		res.Code = 1
		res.Log = err.Error()
		return res, nil
	}
	res.Value, _ = json.Marshal(proposalResults{
		Proposal:     idx,
		ForVotes:     forVotes,
		AgainstVotes: againstVotes,
		Passed:       passed,
		Status:       uint64(proposal.Status),
	})
	res.Height = int64(height)
	return
}

type ValidatorQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewValidatorQuerier(db *state.StateDB, logger cmtlog.Logger) (q *ValidatorQuerier) {
	q = &ValidatorQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *ValidatorQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	validators, height, err := q.db.State().ValidatorAccounts()
	if err != nil {
		res.Code = 1
		return
	}
	res.Height = int64(height)
	res.Value, _ = json.Marshal(validators)
	return
}
