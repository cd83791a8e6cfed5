package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marleve/boardgov-app/config"
	"github.com/marleve/boardgov-app/tx"
	gov_types "github.com/marleve/boardgov-app/types"
)

const testChainId = "gov-test-chain"

func newTestApp(t *testing.T) (*BoardApp, ed25519.PrivKey) {
	t.Helper()
	cfg := &config.BoardAppConfig{Home: t.TempDir()}
	app, err := NewBoardApp(cfg, cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(app.Stop)

	priv := ed25519.GenPrivKey()
	_, err = app.InitChain(context.Background(), &abcitypes.RequestInitChain{
		ChainId: testChainId,
		Validators: []abcitypes.ValidatorUpdate{
			abcitypes.Ed25519ValidatorUpdate(priv.PubKey().Bytes(), 1000),
		},
	})
	require.NoError(t, err)
	return app, priv
}

func signedTx(t *testing.T, priv ed25519.PrivKey, sender uint64, nonce uint64, txType tx.GovTxType, payload any) []byte {
	t.Helper()
	btx := &tx.GovTx{
		Version: tx.GovTxVersion1,
		Type:    txType,
		Nonce:   nonce,
		Sender:  sender,
		Tx:      payload,
	}
	dat, err := btx.SigData([]byte(testChainId))
	require.NoError(t, err)
	sig, err := priv.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}
	dat, err = tx.MarshalGovTx(btx)
	require.NoError(t, err)
	return dat
}

func applyBlock(t *testing.T, app *BoardApp, height int64, blockTime time.Time, txs [][]byte) *abcitypes.ResponseFinalizeBlock {
	t.Helper()
	ctx := context.Background()
	res, err := app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{
		Height: height,
		Time:   blockTime,
		Txs:    txs,
	})
	require.NoError(t, err)
	_, err = app.Commit(ctx, &abcitypes.RequestCommit{})
	require.NoError(t, err)
	return res
}

func TestGovernanceLifecycle(t *testing.T) {
	app, directorPriv := newTestApp(t)
	ctx := context.Background()
	director := uint64(65536)
	genesis := time.Now()

	// the genesis validator directs the company
	res := applyBlock(t, app, 1, genesis, [][]byte{
		signedTx(t, directorPriv, director, 0, tx.GovTxTypeInitCompany,
			&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}),
	})
	require.Len(t, res.TxResults, 1)
	require.Len(t, res.TxResults[0].Events, 1)
	assert.Equal(t, gov_types.EventCompanyInitType, res.TxResults[0].Events[0].Type)

	qres, err := app.Query(ctx, &abcitypes.RequestQuery{Path: "/company/"})
	require.NoError(t, err)
	require.Equal(t, uint32(0), qres.Code)
	var company gov_types.Company
	require.NoError(t, json.Unmarshal(qres.Value, &company))
	assert.Equal(t, "Acme Corp", company.Name)

	// register bob with voting shares
	bobPriv := ed25519.GenPrivKey()
	applyBlock(t, app, 2, genesis.Add(time.Minute), [][]byte{
		signedTx(t, directorPriv, director, 1, tx.GovTxTypeShareholder,
			&tx.ShareholderTx{Pubkey: bobPriv.PubKey().Bytes(), Shares: 30000, Name: "bob"}),
	})
	bob := uint64(65537)

	res = applyBlock(t, app, 3, genesis.Add(2*time.Minute), [][]byte{
		signedTx(t, directorPriv, director, 2, tx.GovTxTypeProposal,
			&tx.ProposalTx{Kind: uint8(gov_types.KindGeneral), Title: "dividend plan", VotingDays: 1}),
	})
	require.Len(t, res.TxResults[0].Events, 1)
	assert.Equal(t, gov_types.EventProposalType, res.TxResults[0].Events[0].Type)

	res = applyBlock(t, app, 4, genesis.Add(3*time.Minute), [][]byte{
		signedTx(t, directorPriv, director, 3, tx.GovTxTypeVote,
			&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteFor)}),
		signedTx(t, bobPriv, bob, 0, tx.GovTxTypeVote,
			&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteAgainst)}),
	})
	require.Len(t, res.TxResults, 2)

	// settle once the voting day has elapsed
	res = applyBlock(t, app, 5, genesis.Add(25*time.Hour), [][]byte{
		signedTx(t, bobPriv, bob, 1, tx.GovTxTypeFinalize, &tx.FinalizeTx{Proposal: 1}),
	})
	require.Len(t, res.TxResults[0].Events, 1)
	ev := gov_types.DecodeEventSettleProposal(res.TxResults[0].Events[0])
	require.NotNil(t, ev)
	assert.True(t, ev.Passed)

	qres, err = app.Query(ctx, &abcitypes.RequestQuery{Path: "/results/", Data: []byte{1}})
	require.NoError(t, err)
	require.Equal(t, uint32(0), qres.Code)
	var results struct {
		ForVotes     uint64 `json:"forVotes"`
		AgainstVotes uint64 `json:"againstVotes"`
		Passed       bool   `json:"passed"`
	}
	require.NoError(t, json.Unmarshal(qres.Value, &results))
	assert.Equal(t, uint64(1000000), results.ForVotes)
	assert.Equal(t, uint64(30000), results.AgainstVotes)
	assert.True(t, results.Passed)
}

func TestCheckTxRejectsBadSignature(t *testing.T) {
	app, _ := newTestApp(t)
	ctx := context.Background()

	stranger := ed25519.GenPrivKey()
	dat := signedTx(t, stranger, 65536, 0, tx.GovTxTypeInitCompany,
		&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 1})
	res, err := app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: dat})
	require.NoError(t, err)
	assert.NotEqual(t, uint32(0), res.Code)
}

func TestProcessProposalRejectsInvalidTx(t *testing.T) {
	app, directorPriv := newTestApp(t)
	ctx := context.Background()

	// double init of the company cannot make it into a block
	txs := [][]byte{
		signedTx(t, directorPriv, 65536, 0, tx.GovTxTypeInitCompany,
			&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}),
		signedTx(t, directorPriv, 65536, 1, tx.GovTxTypeInitCompany,
			&tx.InitCompanyTx{Name: "Beta Corp", TotalShares: 1}),
	}
	res, err := app.ProcessProposal(ctx, &abcitypes.RequestProcessProposal{
		Height: 1,
		Time:   time.Now(),
		Txs:    txs,
	})
	require.NoError(t, err)
	assert.Equal(t, abcitypes.ResponseProcessProposal_REJECT, res.Status)
}

func TestPrepareProposalFiltersFailingTx(t *testing.T) {
	app, directorPriv := newTestApp(t)
	ctx := context.Background()

	good := signedTx(t, directorPriv, 65536, 0, tx.GovTxTypeInitCompany,
		&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000})
	bad := signedTx(t, directorPriv, 65536, 1, tx.GovTxTypeInitCompany,
		&tx.InitCompanyTx{Name: "Beta Corp", TotalShares: 1})
	res, err := app.PrepareProposal(ctx, &abcitypes.RequestPrepareProposal{
		Height: 1,
		Time:   time.Now(),
		Txs:    [][]byte{good, bad},
	})
	require.NoError(t, err)
	require.Len(t, res.Txs, 1)
	assert.Equal(t, good, res.Txs[0])
}

func TestGenesisCompanyAppState(t *testing.T) {
	cfg := &config.BoardAppConfig{Home: t.TempDir()}
	app, err := NewBoardApp(cfg, cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(app.Stop)

	holderPriv := ed25519.GenPrivKey()
	appState, err := json.Marshal(gov_types.GenesisCompany{
		Company: &gov_types.Company{Name: "Acme Corp", TotalShares: 100000},
		Holders: []gov_types.GenesisShareholder{
			{PubKey: holderPriv.PubKey().Bytes(), Shares: 20000, Name: "carol"},
		},
	})
	require.NoError(t, err)

	priv := ed25519.GenPrivKey()
	_, err = app.InitChain(context.Background(), &abcitypes.RequestInitChain{
		ChainId: testChainId,
		Validators: []abcitypes.ValidatorUpdate{
			abcitypes.Ed25519ValidatorUpdate(priv.PubKey().Bytes(), 1000),
		},
		AppStateBytes: appState,
	})
	require.NoError(t, err)

	ctx := context.Background()
	qres, err := app.Query(ctx, &abcitypes.RequestQuery{Path: "/company/"})
	require.NoError(t, err)
	require.Equal(t, uint32(0), qres.Code)
	var company gov_types.Company
	require.NoError(t, json.Unmarshal(qres.Value, &company))
	assert.Equal(t, "Acme Corp", company.Name)

	// carol got the account index after the genesis validator
	qres, err = app.Query(ctx, &abcitypes.RequestQuery{Path: "/accounts/", Data: []byte{0x01, 0x00, 0x01}})
	require.NoError(t, err)
	require.Equal(t, uint32(0), qres.Code)
}
