package state

import (
	"container/heap"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	abci_types "github.com/cometbft/cometbft/abci/types"
	cmtcrypto "github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/marleve/boardgov-app/config"
	"github.com/marleve/boardgov-app/tx"
	gov_types "github.com/marleve/boardgov-app/types"
)

const (
	StartAccountIdx = 65536

	ModifiedFlagNew = 1 << 0
	ModifiedFlagMod = 1 << 1
	ModifiedFlagPK  = 1 << 2

	MaxValidators = 100
)

var (
	ErrNotFound = errors.New("not found")
)

var (
	KeyState         = "s"
	KeyCompany       = "c"
	KeyAccountIndex  = "i%s"
	KeyAccountBody   = "a%x"
	KeyProposalBody  = "p%v"
	KeyProposalIndex = "pi"
	KeyVoteMarker    = "v%v:%s"
)

var (
	ErrTxSenderNoexists      = errors.New("sender account noexists")
	ErrTxNotShareholder      = errors.New("not an active shareholder")
	ErrTxNotBoardMember      = errors.New("not a board member")
	ErrTxNonceInvalid        = errors.New("nonce invalid")
	ErrTxSigInvalid          = errors.New("signature invalid")
	ErrAccountAlreadyExists  = errors.New("account already exists")
	ErrAccountNoexists       = errors.New("account noexists")
	ErrCompanyInitialized    = errors.New("company already initialized")
	ErrCompanyNotInitialized = errors.New("company not initialized")
	ErrProposalNoexists      = errors.New("proposal noexists")
	ErrProposalSettled       = errors.New("proposal already settled")
	ErrVotingClosed          = errors.New("voting deadline passed")
	ErrVotingOpen            = errors.New("voting still open")
	ErrAlreadyVoted          = errors.New("already voted")
	ErrVoteChoiceInvalid     = errors.New("vote choice invalid")
	ErrProposalKindInvalid   = errors.New("proposal kind invalid")
	ErrOneActionInOneBlock   = errors.New("one action in one block")
	ErrTxMoreThanOneProposal = errors.New("more than one proposal")
)

type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64

	header     *StateHeader
	validators []abci_types.ValidatorUpdate
	idxs       map[string]uint64
	acnts      map[uint64]*Account

	modifiedAcnts    map[uint64]uint32
	company          *gov_types.Company
	companyDirty     bool
	proposalMaxIndex uint64
	newProposal      bool
	modProposals     map[uint64]*gov_types.Proposal
	newVotes         map[string]struct{}
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	s := &State{
		logger:        logger,
		db:            db,
		dbVer:         0,
		header:        new(StateHeader),
		validators:    []abci_types.ValidatorUpdate{},
		idxs:          make(map[string]uint64),
		acnts:         make(map[uint64]*Account),
		modifiedAcnts: make(map[uint64]uint32),
		modProposals:  make(map[uint64]*gov_types.Proposal),
		newVotes:      make(map[string]struct{}),
	}
	s.header.AccountIdx = StartAccountIdx
	return s
}

func (s *State) nextState() *State {
	n := &State{
		logger:           s.logger,
		db:               s.db,
		dbVer:            s.dbVer,
		idxs:             make(map[string]uint64),
		acnts:            make(map[uint64]*Account),
		modifiedAcnts:    make(map[uint64]uint32),
		company:          s.company,
		proposalMaxIndex: s.proposalMaxIndex,
		modProposals:     make(map[uint64]*gov_types.Proposal),
		newVotes:         make(map[string]struct{}),
	}
	n.header = s.header.Clone()
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

func (s *State) Clone() *State {
	n := &State{
		logger:           s.logger,
		db:               s.db,
		dbVer:            s.dbVer,
		validators:       append([]abci_types.ValidatorUpdate(nil), s.validators...),
		idxs:             make(map[string]uint64),
		acnts:            make(map[uint64]*Account),
		modifiedAcnts:    make(map[uint64]uint32),
		company:          s.company,
		companyDirty:     s.companyDirty,
		proposalMaxIndex: s.proposalMaxIndex,
		newProposal:      s.newProposal,
		modProposals:     make(map[uint64]*gov_types.Proposal),
		newVotes:         make(map[string]struct{}),
	}
	n.header = s.header.Clone()
	for k, v := range s.idxs {
		n.idxs[k] = v
	}
	for k, v := range s.acnts {
		n.acnts[k] = v.Clone()
	}
	for k, v := range s.modifiedAcnts {
		n.modifiedAcnts[k] = v
	}
	for k, v := range s.modProposals {
		p := *v
		n.modProposals[k] = &p
	}
	for k := range s.newVotes {
		n.newVotes[k] = struct{}{}
	}
	return n
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyProposalIndex))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return err
		}
	}
	s.proposalMaxIndex = new(big.Int).SetBytes(val).Uint64()
	val, err = s.db.Get([]byte(KeyCompany))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return err
		}
	}
	if val != nil {
		company := new(gov_types.Company)
		if err = json.Unmarshal(val, company); err != nil {
			return err
		}
		s.company = company
	}
	val, err = s.db.Get([]byte(KeyState))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil
		}
		return err
	}
	if val != nil {
		err = json.Unmarshal(val, s.header)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		if s.header.RootHash == nil {
			s.header.RootHash = make([]byte, len(rootHash))
		}
		copy(s.header.RootHash, rootHash)
		if s.header.Hash == nil {
			s.header.Hash = make([]byte, len(h))
		}
		copy(s.header.Hash, h[:])
	}
	return
}

// Update flushes every dirty record into the working tree and returns
// the resulting working hash. The tree is rolled back if any write
// fails so a half-applied block never leaks into the store.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	var val []byte
	val, err = json.Marshal(s.header)
	if err != nil {
		return
	}
	_, err = s.db.Set([]byte(KeyState), val)
	if err != nil {
		return
	}

	if s.companyDirty && s.company != nil {
		val, err = json.Marshal(s.company)
		if err != nil {
			return
		}
		_, err = s.db.Set([]byte(KeyCompany), val)
		if err != nil {
			return
		}
	}

	if len(s.modProposals) != 0 {
		_, err = s.db.Set([]byte(KeyProposalIndex), big.NewInt(int64(s.proposalMaxIndex)).Bytes())
		if err != nil {
			return
		}
		idxs := make([]uint64, 0, len(s.modProposals))
		for idx := range s.modProposals {
			idxs = append(idxs, idx)
		}
		sort.Slice(idxs, func(i, j int) bool {
			return idxs[i] < idxs[j]
		})
		for _, idx := range idxs {
			key := fmt.Sprintf(KeyProposalBody, idx)
			proposalBz, _ := json.Marshal(s.modProposals[idx])
			_, err = s.db.Set([]byte(key), proposalBz)
			if err != nil {
				return
			}
		}
	}

	if len(s.newVotes) != 0 {
		keys := make([]string, 0, len(s.newVotes))
		for key := range s.newVotes {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			_, err = s.db.Set([]byte(key), []byte{1})
			if err != nil {
				return
			}
		}
	}

	n := len(s.modifiedAcnts)
	if n > 0 {
		idxs := make([]uint64, n)
		i := 0
		for idx := range s.modifiedAcnts {
			idxs[i] = idx
			i += 1
		}
		sort.Slice(idxs, func(i, j int) bool {
			return idxs[i] < idxs[j]
		})
		for _, idx := range idxs {
			flag := s.modifiedAcnts[idx]
			acnt := s.acnts[idx]
			key := fmt.Sprintf(KeyAccountBody, acnt.Index)
			val, err = json.Marshal(acnt)
			if err != nil {
				return
			}
			_, err = s.db.Set([]byte(key), val)
			if err != nil {
				return
			}
			if (flag&ModifiedFlagNew == ModifiedFlagNew) || (flag&ModifiedFlagPK == ModifiedFlagPK) {
				key = fmt.Sprintf(KeyAccountIndex, acnt.Address())
				val, err = rlp.EncodeToBytes(acnt.Index)
				if err != nil {
					return
				}
				_, err = s.db.Set([]byte(key), val)
				if err != nil {
					return
				}
			}
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.modifiedAcnts = make(map[uint64]uint32)
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}

	s.dbVer = ver
	h = s.calcHash(hash, true)

	return
}

func (s *State) ProposalMax() uint64 {
	return s.proposalMaxIndex
}

// getProposal prefers the block-local modified copy so that several
// votes on the same proposal within one block accumulate correctly.
func (s *State) getProposal(idx uint64) (proposal *gov_types.Proposal, err error) {
	if idx == 0 || idx > s.proposalMaxIndex {
		err = ErrProposalNoexists
		return
	}
	if p, ok := s.modProposals[idx]; ok {
		cp := *p
		return &cp, nil
	}
	key := fmt.Sprintf(KeyProposalBody, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if val == nil {
		err = ErrNotFound
		return
	}
	proposal = new(gov_types.Proposal)
	err = json.Unmarshal(val, proposal)
	return
}

func (s *State) GetProposal(idx uint64) (*gov_types.Proposal, error) {
	return s.getProposal(idx)
}

func (s *State) Company() *gov_types.Company {
	return s.company
}

func (s *State) GetAccount(idx uint64) (acnt *Account, err error) {
	if idx >= s.header.AccountIdx {
		err = ErrAccountNoexists
		return
	}
	acnt = s.acnts[idx]
	if acnt != nil {
		return
	}
	key := fmt.Sprintf(KeyAccountBody, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if val == nil {
		err = ErrNotFound
		return
	}
	acnt = new(Account)
	err = json.Unmarshal(val, acnt)
	if err != nil {
		acnt = nil
		return
	}
	s.acnts[idx] = acnt
	return
}

func (s *State) FindAccount(addr []byte) (acnt *Account, err error) {
	saddr := cmtcrypto.Address(addr).String()
	idx, ok := s.idxs[saddr]
	if !ok {
		key := fmt.Sprintf(KeyAccountIndex, saddr)
		val, err := s.db.Get([]byte(key))
		if err != nil {
			if err == leveldb.ErrNotFound {
				return nil, nil
			}
			return nil, err
		}
		if val == nil {
			return nil, nil
		}
		err = rlp.DecodeBytes(val, &idx)
		if err != nil {
			return nil, err
		}
		s.idxs[saddr] = idx
	}
	acnt, err = s.GetAccount(idx)

	return
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

// SetBlockTime pins the ledger clock to the block being applied; every
// deadline comparison in this block uses it.
func (s *State) SetBlockTime(t time.Time) {
	s.header.Time = t.Unix()
}

func (s *State) BlockTime() time.Time {
	return time.Unix(s.header.Time, 0)
}

// AddAccount registers a brand new account; used by genesis seeding.
func (s *State) AddAccount(acnt *Account) (err error) {
	a, err := s.FindAccount(acnt.AddrBytes())
	if err != nil {
		return err
	}
	if a != nil {
		err = ErrAccountAlreadyExists
		return
	}
	acnt.Index = s.header.AccountIdx
	s.header.AccountIdx += 1
	s.acnts[acnt.Index] = acnt.Clone()
	s.modifiedAcnts[acnt.Index] = ModifiedFlagNew
	return
}

// SeedAccount creates or overrides an account during genesis, before
// any board exists to authorize registrations.
func (s *State) SeedAccount(pubkey []byte, shares uint64, name string, board bool) (err error) {
	a, err := s.FindAccount(ed25519.PubKey(pubkey).Address())
	if err != nil {
		return err
	}
	if a == nil {
		a = &Account{
			Index:  s.header.AccountIdx,
			Shares: shares,
			Name:   name,
			Active: true,
			Board:  board,
		}
		a.SetPubKey(pubkey)
		s.header.AccountIdx += 1
		s.acnts[a.Index] = a.Clone()
		s.modifiedAcnts[a.Index] = ModifiedFlagNew
		return
	}
	a.Shares = shares
	a.Name = name
	a.Active = true
	a.Board = a.Board || board
	v := s.modifiedAcnts[a.Index]
	v |= ModifiedFlagMod
	s.modifiedAcnts[a.Index] = v
	s.acnts[a.Index] = a.Clone()
	return
}

// SetGenesisCompany initializes the company register directly from the
// genesis document, bypassing the board check a live tx would face.
func (s *State) SetGenesisCompany(company *gov_types.Company) error {
	if s.company != nil {
		return ErrCompanyInitialized
	}
	cp := *company
	cp.Height = s.header.Height
	s.company = &cp
	s.companyDirty = true
	return nil
}

func (s *State) Verify(btx *tx.GovTx, allowNonceGap bool) (succ bool, err error) {
	a, err := s.GetAccount(btx.Sender)
	if err != nil {
		return succ, err
	}
	if a == nil {
		err = ErrTxSenderNoexists
		return
	}
	if !(a.Nonce == btx.Nonce || (allowNonceGap && a.Nonce < btx.Nonce)) {
		err = ErrTxNonceInvalid
		return
	}
	dat, err := btx.SigData([]byte(s.header.ChainId))
	if err != nil {
		return succ, err
	}
	succ = a.Verify(dat, btx.Sig)
	if !succ {
		err = ErrTxSigInvalid
	}
	return
}

func (s *State) touchAccount(a *Account) {
	a.Nonce += 1
	v := s.modifiedAcnts[a.Index]
	v |= ModifiedFlagMod
	s.modifiedAcnts[a.Index] = v
	s.acnts[a.Index] = a.Clone()
}

func (s *State) boardAccount(sender uint64) (*Account, error) {
	a, err := s.GetAccount(sender)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrTxSenderNoexists
	}
	if !a.Active || !a.Board {
		return nil, ErrTxNotBoardMember
	}
	return a, nil
}

// InitCompany performs the one-time company setup. Any later attempt
// fails regardless of sender.
func (s *State) InitCompany(stx *tx.InitCompanyTx, sender uint64, checkOnly bool) (event *gov_types.EventCompanyInit, err error) {
	s.logger.Debug("apply init company", "sender", sender, "height", s.header.Height)
	a, err := s.boardAccount(sender)
	if err != nil {
		return nil, err
	}
	if s.company != nil {
		err = ErrCompanyInitialized
		return
	}
	if stx.Name == "" {
		err = errors.New("company name is empty")
		return
	}
	if stx.TotalShares == 0 {
		err = errors.New("company total shares is zero")
		return
	}
	if !checkOnly {
		s.company = &gov_types.Company{
			Name:        stx.Name,
			TotalShares: stx.TotalShares,
			Height:      s.header.Height,
		}
		s.companyDirty = true
		s.touchAccount(a)

		event = &gov_types.EventCompanyInit{
			Name:           stx.Name,
			TotalShares:    stx.TotalShares,
			Creator:        a.Index,
			CreatorAddress: a.Address(),
		}
	}
	return
}

// SetShareholder registers a shareholder, overwriting any prior entry
// for the same address: shares and name are replaced, never merged.
// The account index, nonce and board flag survive re-registration.
func (s *State) SetShareholder(stx *tx.ShareholderTx, sender uint64, checkOnly bool) (event *gov_types.EventShareholder, err error) {
	s.logger.Debug("apply set shareholder", "sender", sender, "height", s.header.Height)
	registrar, err := s.boardAccount(sender)
	if err != nil {
		return nil, err
	}
	if s.company == nil {
		err = ErrCompanyNotInitialized
		return
	}
	if len(stx.Pubkey) != ed25519.PubKeySize {
		err = errors.New("invalid shareholder pubkey")
		return
	}
	addr := ed25519.PubKey(stx.Pubkey).Address()
	a, err := s.FindAccount(addr)
	if err != nil {
		return nil, err
	}
	if !checkOnly {
		replaced := a != nil
		if a == nil {
			a = &Account{
				Index:  s.header.AccountIdx,
				PubKey: stx.Pubkey,
				Shares: stx.Shares,
				Name:   stx.Name,
				Active: true,
				Nonce:  0,
			}
			s.header.AccountIdx += 1
			s.acnts[a.Index] = a.Clone()
			s.modifiedAcnts[a.Index] = ModifiedFlagNew
		} else {
			a.Shares = stx.Shares
			a.Name = stx.Name
			a.Active = true
			v := s.modifiedAcnts[a.Index]
			v |= ModifiedFlagMod
			s.modifiedAcnts[a.Index] = v
			s.acnts[a.Index] = a.Clone()
		}
		s.touchAccount(registrar)

		event = &gov_types.EventShareholder{
			Account:   a.Index,
			Address:   a.Address(),
			Shares:    a.Shares,
			Name:      a.Name,
			Registrar: registrar.Index,
			Replaced:  replaced,
		}
	}
	return
}

// AddBoard promotes an already registered account to the board.
func (s *State) AddBoard(stx *tx.BoardTx, sender uint64, checkOnly bool) (event *gov_types.EventBoard, err error) {
	s.logger.Debug("apply add board", "sender", sender, "height", s.header.Height)
	granter, err := s.boardAccount(sender)
	if err != nil {
		return nil, err
	}
	if len(stx.Pubkey) != ed25519.PubKeySize {
		err = errors.New("invalid board pubkey")
		return
	}
	addr := ed25519.PubKey(stx.Pubkey).Address()
	a, err := s.FindAccount(addr)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrAccountNoexists
		return
	}
	if a.Board {
		err = errors.New("already a board member")
		return
	}
	if !checkOnly {
		a.Board = true
		v := s.modifiedAcnts[a.Index]
		v |= ModifiedFlagMod
		s.modifiedAcnts[a.Index] = v
		s.acnts[a.Index] = a.Clone()
		s.touchAccount(granter)

		event = &gov_types.EventBoard{
			Account: a.Index,
			Address: a.Address(),
			Granter: granter.Index,
		}
	}
	return
}

// Propose appends a proposal: sequential id, threshold fixed from the
// kind, deadline = block time + voting days.
func (s *State) Propose(stx *tx.ProposalTx, sender uint64, checkOnly bool, now time.Time) (event *gov_types.EventProposal, err error) {
	s.logger.Debug("apply proposal", "sender", sender, "height", s.header.Height)
	a, err := s.boardAccount(sender)
	if err != nil {
		return nil, err
	}
	if s.company == nil {
		err = ErrCompanyNotInitialized
		return
	}
	if s.newProposal {
		err = ErrTxMoreThanOneProposal
		return
	}
	if stx.Title == "" {
		err = errors.New("proposal title is empty")
		return
	}
	if gov_types.ProposalKind(stx.Kind) > gov_types.KindBylawAmendment {
		err = ErrProposalKindInvalid
		return
	}
	if stx.VotingDays == 0 {
		err = errors.New("voting period is zero")
		return
	}
	if !checkOnly {
		s.proposalMaxIndex += 1
		kind := gov_types.ProposalKind(stx.Kind)
		proposal := gov_types.Proposal{
			Index:           s.proposalMaxIndex,
			Kind:            kind,
			Title:           stx.Title,
			Data:            stx.Data,
			Proposer:        a.Index,
			ProposerAddress: a.Address(),
			Height:          s.header.Height,
			CreateTime:      now.Unix(),
			Deadline:        now.Add(time.Duration(stx.VotingDays) * 24 * time.Hour).Unix(),
			Status:          gov_types.ProposalStatusActive,
			Threshold:       gov_types.ThresholdForKind(kind),
		}
		s.modProposals[proposal.Index] = &proposal
		s.newProposal = true
		s.touchAccount(a)

		event = &gov_types.EventProposal{
			ProposalIndex:   proposal.Index,
			Proposer:        a.Index,
			ProposerAddress: a.Address(),
			Kind:            uint64(proposal.Kind),
			Title:           proposal.Title,
			Threshold:       proposal.Threshold,
			Deadline:        proposal.Deadline,
			Data:            proposal.Data,
		}
	}
	return
}

func (s *State) voteKey(proposal uint64, addr string) string {
	return fmt.Sprintf(KeyVoteMarker, proposal, addr)
}

func (s *State) hasVoted(proposal uint64, addr string) (bool, error) {
	key := s.voteKey(proposal, addr)
	if _, ok := s.newVotes[key]; ok {
		return true, nil
	}
	has, err := s.db.Has([]byte(key))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return has, nil
}

// Vote adds the caller's full share count to the tally matching the
// choice. Abstain adds nothing but still consumes the caller's single
// vote on this proposal. Only the marker is persisted; the choice
// itself lives nowhere on chain beyond the aggregates.
func (s *State) Vote(stx *tx.VoteTx, sender uint64, checkOnly bool, now time.Time) (event *gov_types.EventVote, err error) {
	s.logger.Debug("apply vote", "sender", sender, "proposal", stx.Proposal, "height", s.header.Height)
	a, err := s.GetAccount(sender)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxSenderNoexists
		return
	}
	if !a.Votable() {
		err = ErrTxNotShareholder
		return
	}
	if gov_types.VoteChoice(stx.Choice) > gov_types.VoteAgainst {
		err = ErrVoteChoiceInvalid
		return
	}
	proposal, err := s.getProposal(stx.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.Status != gov_types.ProposalStatusActive {
		err = ErrProposalSettled
		return
	}
	if now.Unix() >= proposal.Deadline {
		err = ErrVotingClosed
		return
	}
	voted, err := s.hasVoted(stx.Proposal, a.Address())
	if err != nil {
		return nil, err
	}
	if voted {
		err = ErrAlreadyVoted
		return
	}
	if !checkOnly {
		switch gov_types.VoteChoice(stx.Choice) {
		case gov_types.VoteFor:
			proposal.ForVotes += a.Shares
		case gov_types.VoteAgainst:
			proposal.AgainstVotes += a.Shares
		}
		s.modProposals[proposal.Index] = proposal
		s.newVotes[s.voteKey(proposal.Index, a.Address())] = struct{}{}
		s.touchAccount(a)

		event = &gov_types.EventVote{
			ProposalIndex: proposal.Index,
			Voter:         a.Index,
			VoterAddress:  a.Address(),
			Choice:        uint64(stx.Choice),
			Weight:        a.Shares,
		}
	}
	return
}

// Finalize settles a proposal once its deadline has passed. Any
// registered account may trigger it; the outcome depends only on the
// recorded tallies and the stored threshold.
func (s *State) Finalize(stx *tx.FinalizeTx, sender uint64, checkOnly bool, now time.Time) (event *gov_types.EventSettleProposal, err error) {
	s.logger.Debug("apply finalize", "sender", sender, "proposal", stx.Proposal, "height", s.header.Height)
	a, err := s.GetAccount(sender)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxSenderNoexists
		return
	}
	proposal, err := s.getProposal(stx.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.Status != gov_types.ProposalStatusActive {
		err = ErrProposalSettled
		return
	}
	if now.Unix() < proposal.Deadline {
		err = ErrVotingOpen
		return
	}
	if !checkOnly {
		if proposal.Passed() {
			proposal.Status = gov_types.ProposalStatusPassed
		} else {
			proposal.Status = gov_types.ProposalStatusRejected
		}
		s.modProposals[proposal.Index] = proposal
		s.touchAccount(a)

		event = &gov_types.EventSettleProposal{
			ProposalIndex: proposal.Index,
			ForVotes:      proposal.ForVotes,
			AgainstVotes:  proposal.AgainstVotes,
			Passed:        proposal.Status == gov_types.ProposalStatusPassed,
		}
	}
	return
}

// Results reports the tallies and the pass verdict: the settled status
// for finalized proposals, the live projection for active ones.
func (s *State) Results(idx uint64) (forVotes uint64, againstVotes uint64, passed bool, err error) {
	proposal, err := s.getProposal(idx)
	if err != nil {
		return 0, 0, false, err
	}
	forVotes = proposal.ForVotes
	againstVotes = proposal.AgainstVotes
	if proposal.Status == gov_types.ProposalStatusActive {
		passed = proposal.Passed()
	} else {
		passed = proposal.Status == gov_types.ProposalStatusPassed
	}
	return
}

// Validators derives the consensus validator set from the register:
// active board members weighted by their shares, capped at
// MaxValidators, highest power first.
func (s *State) Validators() (updateVals map[string]abci_types.ValidatorUpdate, err error) {
	updateVals = make(map[string]abci_types.ValidatorUpdate, 0)
	start := []byte(fmt.Sprintf(KeyAccountBody, ""))
	end := PrefixEndBytes(start)
	aIterator, err := s.db.Iterator(start, end, false)
	if err != nil {
		return nil, err
	}

	valsQueue := &PowerQueue{}
	heap.Init(valsQueue)
	for ; aIterator.Valid(); aIterator.Next() {
		var act Account
		valBytes := aIterator.Value()
		err = json.Unmarshal(valBytes, &act)
		if err != nil {
			return nil, err
		}
		if !act.Active || !act.Board {
			continue
		}
		power := config.PowerPerShares(act.Shares, s.header.Height)
		if power > 0 {
			heap.Push(valsQueue, validatorWithPower{
				Index:  act.Index,
				Pubkey: act.PubKey,
				Power:  power,
			})
		}
	}

	vals := make([]abci_types.ValidatorUpdate, 0)
	for valsQueue.Len() > 0 && len(vals) < MaxValidators {
		val := heap.Pop(valsQueue).(validatorWithPower)
		vals = append(vals, abci_types.Ed25519ValidatorUpdate(val.Pubkey, val.Power))
	}
	s.validators = vals

	for _, val := range vals {
		updateVals[val.PubKey.String()] = val
	}

	return updateVals, nil
}

func (s *State) ValidatorsUpdate(curVals map[string]abci_types.ValidatorUpdate) (updateVals []abci_types.ValidatorUpdate, err error) {
	nextVals, err := s.Validators()
	if err != nil {
		return nil, err
	}

	for key, val := range nextVals {
		if v, ok := curVals[key]; ok {
			if v.Power != val.Power {
				updateVals = append(updateVals, val)
			}
		} else {
			updateVals = append(updateVals, val)
		}
	}

	for key, curVal := range curVals {
		if _, ok := nextVals[key]; !ok {
			curVal.Power = 0
			updateVals = append(updateVals, curVal)
		}
	}
	return
}

func (s *State) ValidatorAccounts() (accounts []*Account, height uint64, err error) {
	vals := s.validators
	for _, val := range vals {
		pk := ed25519.PubKey(val.PubKey.GetEd25519()[:])
		addr := pk.Address()[:]
		act, _ := s.FindAccount(addr)
		if act != nil {
			accounts = append(accounts, act)
		}
	}
	height = s.header.Height
	return
}

type validatorWithPower struct {
	Index  uint64
	Pubkey []byte
	Power  int64
}

type PowerQueue []validatorWithPower

func (pq PowerQueue) Len() int { return len(pq) }

func (pq PowerQueue) Less(i, j int) bool {
	if pq[i].Power == pq[j].Power {
		return pq[i].Index < pq[j].Index
	}
	return pq[i].Power > pq[j].Power
}

func (pq PowerQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *PowerQueue) Push(x any) {
	item := x.(validatorWithPower)
	*pq = append(*pq, item)
}

func (pq *PowerQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)

	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			break
		}

		end = end[:len(end)-1]

		if len(end) == 0 {
			end = nil
			break
		}
	}

	return end
}
