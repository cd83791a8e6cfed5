package state

import (
	"testing"
	"time"

	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marleve/boardgov-app/tx"
	gov_types "github.com/marleve/boardgov-app/types"
)

func newTestDB(t *testing.T) *StateDB {
	t.Helper()
	db, err := NewStateDB(t.TempDir(), cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedAccount(t *testing.T, st *State, shares uint64, name string, board bool) (*Account, ed25519.PrivKey) {
	t.Helper()
	priv := ed25519.GenPrivKey()
	pub := priv.PubKey().Bytes()
	require.NoError(t, st.SeedAccount(pub, shares, name, board))
	a, err := st.FindAccount(priv.PubKey().Address())
	require.NoError(t, err)
	require.NotNil(t, a)
	return a, priv
}

func commit(t *testing.T, db *StateDB, st *State) *State {
	t.Helper()
	_, err := st.Update()
	require.NoError(t, err)
	_, err = db.SetState(st)
	require.NoError(t, err)
	return db.NewState()
}

func TestInitCompanyOnce(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 1000, "director", true)

	event, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "Acme Corp", event.Name)
	assert.Equal(t, uint64(100000), event.TotalShares)

	_, err = st.InitCompany(&tx.InitCompanyTx{Name: "Other Corp", TotalShares: 1}, director.Index, true)
	assert.ErrorIs(t, err, ErrCompanyInitialized)
}

func TestInitCompanyRequiresBoard(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	holder, _ := seedAccount(t, st, 1000, "holder", false)

	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, holder.Index, true)
	assert.ErrorIs(t, err, ErrTxNotBoardMember)
}

func TestSetShareholderOverwrites(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 1000, "director", true)
	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)

	priv := ed25519.GenPrivKey()
	pub := priv.PubKey().Bytes()
	event, err := st.SetShareholder(&tx.ShareholderTx{Pubkey: pub, Shares: 50000, Name: "alice"}, director.Index, false)
	require.NoError(t, err)
	assert.False(t, event.Replaced)

	first, err := st.FindAccount(priv.PubKey().Address())
	require.NoError(t, err)
	firstIndex := first.Index
	firstNonce := first.Nonce

	// registering the same pubkey again replaces shares and name,
	// never merges them
	event, err = st.SetShareholder(&tx.ShareholderTx{Pubkey: pub, Shares: 20000, Name: "alice m."}, director.Index, false)
	require.NoError(t, err)
	assert.True(t, event.Replaced)

	second, err := st.FindAccount(priv.PubKey().Address())
	require.NoError(t, err)
	assert.Equal(t, firstIndex, second.Index)
	assert.Equal(t, firstNonce, second.Nonce)
	assert.Equal(t, uint64(20000), second.Shares)
	assert.Equal(t, "alice m.", second.Name)
}

func TestAddBoardPromotesExistingAccount(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 1000, "director", true)
	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)

	holder, holderPriv := seedAccount(t, st, 500, "holder", false)
	_, err = st.AddBoard(&tx.BoardTx{Pubkey: holderPriv.PubKey().Bytes()}, director.Index, false)
	require.NoError(t, err)

	a, err := st.GetAccount(holder.Index)
	require.NoError(t, err)
	assert.True(t, a.Board)

	// unknown pubkey cannot be promoted
	_, err = st.AddBoard(&tx.BoardTx{Pubkey: ed25519.GenPrivKey().PubKey().Bytes()}, director.Index, true)
	assert.ErrorIs(t, err, ErrAccountNoexists)
}

func TestProposeKindThresholds(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 1000, "director", true)
	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)

	now := time.Now()
	event, err := st.Propose(&tx.ProposalTx{
		Kind:       uint8(gov_types.KindMerger),
		Title:      "merge with beta corp",
		VotingDays: 7,
	}, director.Index, false, now)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), event.ProposalIndex)
	assert.Equal(t, uint64(75), event.Threshold)
	assert.Equal(t, now.Add(7*24*time.Hour).Unix(), event.Deadline)

	proposal, err := st.GetProposal(1)
	require.NoError(t, err)
	assert.Equal(t, gov_types.ProposalStatusActive, proposal.Status)
	assert.Equal(t, uint64(75), proposal.Threshold)
}

func TestProposeRejectsInvalid(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 1000, "director", true)
	holder, _ := seedAccount(t, st, 500, "holder", false)
	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)

	now := time.Now()
	_, err = st.Propose(&tx.ProposalTx{Kind: 0, Title: "x", VotingDays: 1}, holder.Index, true, now)
	assert.ErrorIs(t, err, ErrTxNotBoardMember)

	_, err = st.Propose(&tx.ProposalTx{Kind: 9, Title: "x", VotingDays: 1}, director.Index, true, now)
	assert.ErrorIs(t, err, ErrProposalKindInvalid)

	_, err = st.Propose(&tx.ProposalTx{Kind: 0, Title: "", VotingDays: 1}, director.Index, true, now)
	assert.Error(t, err)

	_, err = st.Propose(&tx.ProposalTx{Kind: 0, Title: "x", VotingDays: 0}, director.Index, true, now)
	assert.Error(t, err)
}

func TestOneProposalPerBlock(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 1000, "director", true)
	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)

	now := time.Now()
	_, err = st.Propose(&tx.ProposalTx{Kind: 0, Title: "first", VotingDays: 1}, director.Index, false, now)
	require.NoError(t, err)
	_, err = st.Propose(&tx.ProposalTx{Kind: 0, Title: "second", VotingDays: 1}, director.Index, false, now)
	assert.ErrorIs(t, err, ErrTxMoreThanOneProposal)
}

func TestVoteWeightedTally(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 50000, "alice", true)
	bob, _ := seedAccount(t, st, 30000, "bob", false)
	carol, _ := seedAccount(t, st, 20000, "carol", false)
	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)

	now := time.Now()
	_, err = st.Propose(&tx.ProposalTx{Kind: uint8(gov_types.KindGeneral), Title: "dividend plan", VotingDays: 7}, director.Index, false, now)
	require.NoError(t, err)
	st = commit(t, db, st)

	voteTime := now.Add(time.Hour)
	event, err := st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteFor)}, director.Index, false, voteTime)
	require.NoError(t, err)
	assert.Equal(t, uint64(50000), event.Weight)

	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteAgainst)}, bob.Index, false, voteTime)
	require.NoError(t, err)

	// abstain adds no weight but still consumes carol's vote
	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteAbstain)}, carol.Index, false, voteTime)
	require.NoError(t, err)
	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteFor)}, carol.Index, true, voteTime)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	proposal, err := st.GetProposal(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(50000), proposal.ForVotes)
	assert.Equal(t, uint64(30000), proposal.AgainstVotes)
	assert.True(t, proposal.Passed())
}

func TestVoteGuards(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 50000, "alice", true)
	bob, _ := seedAccount(t, st, 30000, "bob", false)
	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)

	now := time.Now()
	_, err = st.Propose(&tx.ProposalTx{Kind: 0, Title: "plan", VotingDays: 1}, director.Index, false, now)
	require.NoError(t, err)
	st = commit(t, db, st)

	// double vote across blocks hits the persisted marker
	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteFor)}, director.Index, false, now.Add(time.Hour))
	require.NoError(t, err)
	st = commit(t, db, st)
	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteAgainst)}, director.Index, true, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	// voting at or past the deadline fails even while status is active
	deadline := now.Add(24 * time.Hour)
	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteFor)}, bob.Index, true, deadline)
	assert.ErrorIs(t, err, ErrVotingClosed)

	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: 3}, bob.Index, true, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrVoteChoiceInvalid)

	_, err = st.Vote(&tx.VoteTx{Proposal: 9, Choice: uint8(gov_types.VoteFor)}, bob.Index, true, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrProposalNoexists)
}

func TestVoteRequiresShares(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 50000, "alice", true)
	observer, _ := seedAccount(t, st, 0, "observer", false)
	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)

	now := time.Now()
	_, err = st.Propose(&tx.ProposalTx{Kind: 0, Title: "plan", VotingDays: 1}, director.Index, false, now)
	require.NoError(t, err)
	st = commit(t, db, st)

	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteFor)}, observer.Index, true, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrTxNotShareholder)
}

func TestFinalizeAfterDeadline(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 50000, "alice", true)
	bob, _ := seedAccount(t, st, 30000, "bob", false)
	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)

	now := time.Now()
	_, err = st.Propose(&tx.ProposalTx{Kind: 0, Title: "plan", VotingDays: 1}, director.Index, false, now)
	require.NoError(t, err)
	st = commit(t, db, st)

	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteFor)}, director.Index, false, now.Add(time.Hour))
	require.NoError(t, err)
	st = commit(t, db, st)

	// still open
	_, err = st.Finalize(&tx.FinalizeTx{Proposal: 1}, bob.Index, true, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrVotingOpen)

	// any registered account may settle at the deadline
	deadline := now.Add(24 * time.Hour)
	event, err := st.Finalize(&tx.FinalizeTx{Proposal: 1}, bob.Index, false, deadline)
	require.NoError(t, err)
	assert.True(t, event.Passed)
	assert.Equal(t, uint64(50000), event.ForVotes)

	proposal, err := st.GetProposal(1)
	require.NoError(t, err)
	assert.Equal(t, gov_types.ProposalStatusPassed, proposal.Status)

	_, err = st.Finalize(&tx.FinalizeTx{Proposal: 1}, bob.Index, true, deadline)
	assert.ErrorIs(t, err, ErrProposalSettled)

	// settled proposals take no more votes
	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteFor)}, bob.Index, true, deadline)
	assert.ErrorIs(t, err, ErrProposalSettled)
}

func TestFinalizeZeroVotesRejects(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 50000, "alice", true)
	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)

	now := time.Now()
	_, err = st.Propose(&tx.ProposalTx{Kind: 0, Title: "plan", VotingDays: 1}, director.Index, false, now)
	require.NoError(t, err)
	st = commit(t, db, st)

	event, err := st.Finalize(&tx.FinalizeTx{Proposal: 1}, director.Index, false, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, event.Passed)

	proposal, err := st.GetProposal(1)
	require.NoError(t, err)
	assert.Equal(t, gov_types.ProposalStatusRejected, proposal.Status)
}

func TestResultsLiveProjection(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	director, _ := seedAccount(t, st, 60000, "alice", true)
	_, err := st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)

	now := time.Now()
	_, err = st.Propose(&tx.ProposalTx{Kind: 0, Title: "plan", VotingDays: 1}, director.Index, false, now)
	require.NoError(t, err)
	st = commit(t, db, st)

	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteFor)}, director.Index, false, now.Add(time.Hour))
	require.NoError(t, err)

	forVotes, againstVotes, passed, err := st.Results(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(60000), forVotes)
	assert.Equal(t, uint64(0), againstVotes)
	assert.True(t, passed)
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := NewStateDB(dir, cmtlog.NewNopLogger())
	require.NoError(t, err)

	st := db.NewState()
	director, directorPriv := seedAccount(t, st, 50000, "alice", true)
	_, err = st.InitCompany(&tx.InitCompanyTx{Name: "Acme Corp", TotalShares: 100000}, director.Index, false)
	require.NoError(t, err)
	now := time.Now()
	_, err = st.Propose(&tx.ProposalTx{Kind: 0, Title: "plan", VotingDays: 1}, director.Index, false, now)
	require.NoError(t, err)
	st = commit(t, db, st)
	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteFor)}, director.Index, false, now.Add(time.Hour))
	require.NoError(t, err)
	commit(t, db, st)
	require.NoError(t, db.Close())

	db, err = NewStateDB(dir, cmtlog.NewNopLogger())
	require.NoError(t, err)
	defer db.Close()

	st = db.State()
	company := st.Company()
	require.NotNil(t, company)
	assert.Equal(t, "Acme Corp", company.Name)

	proposal, err := st.GetProposal(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(50000), proposal.ForVotes)

	a, err := st.FindAccount(directorPriv.PubKey().Address())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, director.Index, a.Index)

	// the vote marker survives the reopen
	_, err = st.Vote(&tx.VoteTx{Proposal: 1, Choice: uint8(gov_types.VoteAgainst)}, a.Index, true, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestVerifySignature(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	st.SetChainId("test-chain-1")
	director, priv := seedAccount(t, st, 1000, "director", true)

	btx := &tx.GovTx{
		Version: tx.GovTxVersion1,
		Type:    tx.GovTxTypeProposal,
		Nonce:   director.Nonce,
		Sender:  director.Index,
		Tx:      &tx.ProposalTx{Kind: 0, Title: "x", VotingDays: 1},
	}
	dat, err := btx.SigData([]byte("test-chain-1"))
	require.NoError(t, err)
	sig, err := priv.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}

	ok, err := st.Verify(btx, false)
	require.NoError(t, err)
	assert.True(t, ok)

	// a signature salted with another chain id must not validate
	other, err := btx.SigData([]byte("test-chain-2"))
	require.NoError(t, err)
	sig2, err := priv.Sign(other)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig2}
	_, err = st.Verify(btx, false)
	assert.ErrorIs(t, err, ErrTxSigInvalid)

	btx.Nonce = director.Nonce + 5
	btx.Sig = [][]byte{sig}
	_, err = st.Verify(btx, false)
	assert.ErrorIs(t, err, ErrTxNonceInvalid)
}

func TestValidatorsFromBoard(t *testing.T) {
	db := newTestDB(t)
	st := db.NewState()
	seedAccount(t, st, 50000, "alice", true)
	seedAccount(t, st, 30000, "bob", false)
	st = commit(t, db, st)

	vals, err := st.Validators()
	require.NoError(t, err)
	// only board members back consensus, shareholders do not
	assert.Len(t, vals, 1)
	for _, v := range vals {
		assert.Equal(t, int64(50), v.Power)
	}
}
