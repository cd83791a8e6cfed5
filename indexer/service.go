package indexer

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Service is the http read side of the indexer, serving the company
// register and proposal listings the web client renders.
type Service struct {
	engine     *gin.Engine
	indexer    *ChainIndexer
	listenAddr string
}

func NewService(listenAddr string, indexer *ChainIndexer) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		indexer:    indexer,
		listenAddr: listenAddr,
	}
	s.engine.POST("/getCompany", s.handleGetCompany)
	s.engine.POST("/getShareholders", s.handleGetShareholders)
	s.engine.POST("/getProposal", s.handleGetProposal)
	s.engine.POST("/getProposals", s.handleGetProposals)
	s.engine.POST("/getVotes", s.handleGetVotes)
	return s
}

func (s *Service) Start() {
	s.engine.Run(s.listenAddr)
}

type GetCompanyResponse struct {
	Company *Company `json:"company"`
}

func (s *Service) handleGetCompany(c *gin.Context) {
	company, err := s.indexer.getCompany()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetCompanyResponse{Company: company})
}

type GetShareholdersReq struct {
	Address  string `json:"address"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetShareholdersResponse struct {
	Shareholders []Shareholder `json:"shareholders"`
	Total        uint64        `json:"total"`
}

func (s *Service) handleGetShareholders(c *gin.Context) {
	var response GetShareholdersResponse
	response.Shareholders = make([]Shareholder, 0)
	var requestData GetShareholdersReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if requestData.Address != "" {
		holder, err := s.indexer.getShareholderByAddress(requestData.Address)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Shareholders = append(response.Shareholders, *holder)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}

	holders, total, err := s.indexer.getShareholders(requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Shareholders = holders
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetProposalsReq struct {
	ProposalId      uint64 `json:"proposalId"`
	ProposerAddress string `json:"proposer"`
	Status          uint64 `json:"status"`
	Search          string `json:"search"`
	Page            int    `json:"page"`
	PageSize        int    `json:"pageSize"`
}

type ProposalInfo struct {
	Proposal Proposal `json:"proposal"`
	VoteCnt  uint64   `json:"voteCnt"`
}

type GetProposalsResponse struct {
	Proposals []ProposalInfo `json:"proposals"`
	Total     uint64         `json:"total"`
}

func (s *Service) handleGetProposals(c *gin.Context) {
	var response GetProposalsResponse
	response.Proposals = make([]ProposalInfo, 0)
	var err error
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if requestData.ProposalId != 0 {
		proposalInfo, err := s.getProposalInfoById(requestData.ProposalId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, proposalInfo)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}

	proposalTotal := uint64(0)
	proposals := make([]Proposal, 0)
	if requestData.ProposerAddress != "" {
		proposals, proposalTotal, err = s.indexer.getProposalsByProposerAddr(requestData.ProposerAddress, requestData.Page, requestData.PageSize)
	} else {
		proposals, proposalTotal, err = s.indexer.getProposals(requestData.Status, requestData.Search, requestData.Page, requestData.PageSize)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response.Total = proposalTotal
	for _, proposal := range proposals {
		_, voteCnt, err := s.indexer.getVotesByProposal(proposal.Id, 0, 1)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, ProposalInfo{
			Proposal: proposal,
			VoteCnt:  voteCnt,
		})
	}
	c.JSON(http.StatusOK, response)
}

type GetProposalReq struct {
	ProposalId uint64 `json:"proposalId"`
}

type GetProposalResponse struct {
	Proposal Proposal `json:"proposal"`
	Votes    []Vote   `json:"votes"`
	VoteCnt  uint64   `json:"voteCnt"`
}

func (s *Service) handleGetProposal(c *gin.Context) {
	var requestData GetProposalReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.ProposalId == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposalId is required"})
		return
	}
	proposal, err := s.indexer.getProposalById(requestData.ProposalId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	votes, total, err := s.indexer.getVotesByProposal(requestData.ProposalId, 0, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetProposalResponse{
		Proposal: proposal,
		Votes:    votes,
		VoteCnt:  total,
	})
}

func (s *Service) getProposalInfoById(proposalId uint64) (ProposalInfo, error) {
	proposal, err := s.indexer.getProposalById(proposalId)
	if err != nil {
		return ProposalInfo{}, err
	}
	_, total, err := s.indexer.getVotesByProposal(proposalId, 0, 1)
	if err != nil {
		return ProposalInfo{}, err
	}
	return ProposalInfo{
		Proposal: proposal,
		VoteCnt:  total,
	}, nil
}

type GetVotesReq struct {
	ProposalId   uint64 `json:"proposalId"`
	VoterAddress string `json:"voter"`
	Page         int    `json:"page"`
	PageSize     int    `json:"pageSize"`
}

type GetVotesResponse struct {
	Votes []Vote `json:"votes"`
	Total uint64 `json:"total"`
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var response GetVotesResponse
	response.Votes = make([]Vote, 0)
	var requestData GetVotesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.ProposalId != 0 {
		votes, total, err := s.indexer.getVotesByProposal(requestData.ProposalId, requestData.Page, requestData.PageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Votes = votes
		response.Total = total
		c.JSON(http.StatusOK, response)
		return
	}
	if requestData.VoterAddress != "" {
		votes, total, err := s.indexer.getVotesByVoter(requestData.VoterAddress, requestData.Page, requestData.PageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Votes = votes
		response.Total = total
		c.JSON(http.StatusOK, response)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "proposalId or voter is required"})
}
