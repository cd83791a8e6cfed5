package indexer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/marleve/boardgov-app/state"
	gov_types "github.com/marleve/boardgov-app/types"
)

// ChainIndexer tails the chain over rpc and mirrors governance events
// into a local sqlite db the http service reads from.
type ChainIndexer struct {
	logger        cmtlog.Logger
	Url           string
	Height        int64
	db            *gorm.DB
	cli           *comethttp.HTTP
	eventHandlers map[string]eventHandler
	ChainId       string
}

func NewChainIndexer(logger cmtlog.Logger, dbPath string, chainUrl string) (*ChainIndexer, error) {
	logger.Info("NewChainIndexer", "dbPath", dbPath, "url", chainUrl)
	cli, err := comethttp.New(chainUrl, "/websocket")
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&SyncHeight{}, &Company{}, &Shareholder{}, &Proposal{}, &Vote{}).Error; err != nil {
		return nil, err
	}
	h := SyncHeight{Id: 1}
	if err = db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := ChainIndexer{
		logger:        logger.With("module", "indexer"),
		Url:           chainUrl,
		Height:        int64(h.Height + 1),
		db:            db,
		cli:           cli,
		eventHandlers: map[string]eventHandler{},
	}

	c.eventHandlers = map[string]eventHandler{
		gov_types.EventCompanyInitType:    c.handleEventCompanyInit,
		gov_types.EventShareholderType:    c.handleEventShareholder,
		gov_types.EventBoardType:          c.handleEventBoard,
		gov_types.EventProposalType:       c.handleEventProposal,
		gov_types.EventVoteType:           c.handleEventVote,
		gov_types.EventSettleProposalType: c.handleEventSettleProposal,
	}
	return &c, nil
}

type eventHandler func(ctx context.Context, event abci.Event, height int64)

func (c *ChainIndexer) handleEvent(ctx context.Context, event abci.Event, height int64) {
	if h, ok := c.eventHandlers[event.Type]; ok {
		h(ctx, event, height)
	}
}

func (c *ChainIndexer) handleEventCompanyInit(ctx context.Context, event abci.Event, height int64) {
	ev := gov_types.DecodeEventCompanyInit(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	company := Company{
		Id:          1,
		Name:        ev.Name,
		TotalShares: ev.TotalShares,
		Height:      uint64(height),
	}
	if err := c.db.Save(&company).Error; err != nil {
		c.logger.Error("save company fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventShareholder(ctx context.Context, event abci.Event, height int64) {
	ev := gov_types.DecodeEventShareholder(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	holder := Shareholder{
		Id:       ev.Account,
		Address:  ev.Address,
		Shares:   ev.Shares,
		Name:     ev.Name,
		Height:   uint64(height),
		Replaced: ev.Replaced,
	}
	if ev.Replaced {
		prev, err := c.getShareholderByAddress(ev.Address)
		if err == nil && prev != nil {
			holder.Board = prev.Board
		}
	}
	if err := c.db.Save(&holder).Error; err != nil {
		c.logger.Error("save shareholder fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventBoard(ctx context.Context, event abci.Event, height int64) {
	ev := gov_types.DecodeEventBoard(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var holder Shareholder
	if err := c.db.Where("id = ?", ev.Account).First(&holder).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.logger.Error("get shareholder fail", "err", err)
			return
		}
		holder = Shareholder{
			Id:      ev.Account,
			Address: ev.Address,
			Height:  uint64(height),
		}
	}
	holder.Board = true
	if err := c.db.Save(&holder).Error; err != nil {
		c.logger.Error("save board member fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventProposal(ctx context.Context, event abci.Event, height int64) {
	ev := gov_types.DecodeEventProposal(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	proposal := Proposal{
		Id:              ev.ProposalIndex,
		ProposerIndex:   ev.Proposer,
		ProposerAddress: ev.ProposerAddress,
		Kind:            ev.Kind,
		Title:           ev.Title,
		Data:            string(ev.Data),
		Threshold:       ev.Threshold,
		NewHeight:       uint64(height),
		Status:          uint64(gov_types.ProposalStatusActive),
		CreateTimestamp: time.Now().Unix(),
		ExpireTimestamp: ev.Deadline,
	}
	holder, err := c.getShareholderByAddress(ev.ProposerAddress)
	if err == nil && holder != nil {
		proposal.ProposerName = holder.Name
	}
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventVote(ctx context.Context, event abci.Event, height int64) {
	ev := gov_types.DecodeEventVote(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	vote := Vote{
		Proposal:     ev.ProposalIndex,
		VoterIndex:   ev.Voter,
		VoterAddress: ev.VoterAddress,
		Height:       uint64(height),
		Choice:       ev.Choice,
		Weight:       ev.Weight,
	}
	holder, err := c.getShareholderByAddress(ev.VoterAddress)
	if err == nil && holder != nil {
		vote.VoterName = holder.Name
	}
	if err := c.db.Create(&vote).Error; err != nil {
		c.logger.Error("save vote fail", "err", err)
		return
	}
	var proposal Proposal
	if err := c.db.First(&proposal, ev.ProposalIndex).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	switch gov_types.VoteChoice(ev.Choice) {
	case gov_types.VoteFor:
		proposal.ForVotes += ev.Weight
	case gov_types.VoteAgainst:
		proposal.AgainstVotes += ev.Weight
	}
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal tally fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventSettleProposal(ctx context.Context, event abci.Event, height int64) {
	ev := gov_types.DecodeEventSettleProposal(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var proposal Proposal
	if err := c.db.First(&proposal, ev.ProposalIndex).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	if ev.Passed {
		proposal.Status = uint64(gov_types.ProposalStatusPassed)
	} else {
		proposal.Status = uint64(gov_types.ProposalStatusRejected)
	}
	proposal.ForVotes = ev.ForVotes
	proposal.AgainstVotes = ev.AgainstVotes
	proposal.Passed = ev.Passed
	proposal.SettleHeight = uint64(height)
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) Start(ctx context.Context) {
	var err error
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.cli == nil {
				c.cli, err = comethttp.New(c.Url, "/websocket")
				if err != nil {
					c.logger.Error("connect fail", "err", err)
					continue
				}
			}
			b, err := c.cli.Status(context.TODO())
			if err != nil {
				c.logger.Error("get status fail", "err", err)
				if !c.cli.IsRunning() {
					c.cli.Stop()
					c.cli, err = comethttp.New(c.Url, "/websocket")
					if err != nil {
						c.logger.Error("reconnect fail", "err", err)
						continue
					}
				}
				continue
			}
			for b.SyncInfo.LatestBlockHeight > c.Height {
				time.Sleep(time.Millisecond * 100)
				c.logger.Info("indexer syncing", "height", c.Height)
				events, err := c.cli.BlockResults(ctx, &c.Height)
				if err != nil {
					c.logger.Error("get block results fail", "err", err)
					if !c.cli.IsRunning() {
						c.cli.Stop()
						c.cli, err = comethttp.New(c.Url, "/websocket")
						if err != nil {
							c.logger.Error("reconnect fail", "err", err)
							continue
						}
					}
					continue
				}
				for _, res := range events.TxsResults {
					for _, event := range res.Events {
						c.handleEvent(ctx, event, c.Height)
					}
				}
				if err := c.db.Save(SyncHeight{
					Id:     1,
					Height: uint64(c.Height),
				}).Error; err != nil {
					c.logger.Error("save height fail", "err", err)
					continue
				}
				c.Height++
			}
		}
	}
}

func (c *ChainIndexer) getCompany() (*Company, error) {
	var company Company
	err := c.db.First(&company, 1).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (c *ChainIndexer) getShareholders(page int, pageSize int) ([]Shareholder, uint64, error) {
	var holders []Shareholder
	err := c.db.Order("id asc").Offset(page * pageSize).Limit(pageSize).Find(&holders).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Shareholder{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return holders, total, nil
}

func (c *ChainIndexer) getShareholderByAddress(address string) (*Shareholder, error) {
	var holder Shareholder
	err := c.db.Where("address = ?", address).First(&holder).Error
	if err != nil {
		return nil, err
	}
	return &holder, nil
}

func (c *ChainIndexer) getProposals(status uint64, search string, page int, pageSize int) ([]Proposal, uint64, error) {
	query := c.db.Model(&Proposal{})
	if status != 0 {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}
	var proposals []Proposal
	err := query.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getProposalById(proposalId uint64) (Proposal, error) {
	var proposal Proposal
	err := c.db.Where("id = ?", proposalId).First(&proposal).Error
	if err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

func (c *ChainIndexer) getProposalsByProposerAddr(proposerAddr string, page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Where("proposer_address = ?", proposerAddr).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Where("proposer_address = ?", proposerAddr).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

// pageSize 0 returns all votes of the proposal.
func (c *ChainIndexer) getVotesByProposal(proposal uint64, page int, pageSize int) ([]Vote, uint64, error) {
	var votes []Vote
	query := c.db.Where("proposal = ?", proposal).Order("id desc")
	if pageSize > 0 {
		query = query.Offset(page * pageSize).Limit(pageSize)
	}
	err := query.Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Vote{}).Where("proposal = ?", proposal).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (c *ChainIndexer) getVotesByVoter(voter string, page int, pageSize int) ([]Vote, uint64, error) {
	var votes []Vote
	err := c.db.Where("voter_address = ?", voter).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Vote{}).Where("voter_address = ?", voter).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

// QueryAccount fetches the on-chain account record over abci query,
// by address when given, by index otherwise.
func QueryAccount(cli *comethttp.HTTP, index uint64, address string) (*state.Account, error) {
	ctx := context.Background()
	var dat []byte
	var err error
	if len(address) > 0 {
		dat, err = hex.DecodeString(address)
		if err != nil {
			fmt.Printf("invalid address:%v\n", address)
			return nil, err
		}
	} else {
		s := fmt.Sprintf("0%x", index)
		if len(s)&1 == 1 {
			s = s[1:]
		}
		dat, _ = hex.DecodeString(s)
	}
	res, err := cli.ABCIQuery(ctx, "/accounts/", dat)
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		return nil, err
	}
	if res.Response.Code != 0 {
		return nil, errors.New("account not found")
	}
	var act state.Account
	err = json.Unmarshal(res.Response.Value, &act)
	if err != nil {
		return nil, err
	}
	return &act, err
}
