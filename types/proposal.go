package types

// ProposalKind classifies a proposal; the pass threshold is derived from it
// at creation time and never changes afterwards.
type ProposalKind uint8

const (
	KindGeneral          ProposalKind = 0
	KindDirectorElection ProposalKind = 1
	KindMerger           ProposalKind = 2
	KindDividend         ProposalKind = 3
	KindCompensation     ProposalKind = 4
	KindBylawAmendment   ProposalKind = 5
)

// ThresholdForKind returns the minimum for-percentage required to pass.
// Mergers need a supermajority, director elections a reinforced majority,
// everything else a simple majority.
func ThresholdForKind(kind ProposalKind) uint64 {
	switch kind {
	case KindMerger:
		return 75
	case KindDirectorElection:
		return 60
	default:
		return 50
	}
}

type ProposalStatus uint64

const (
	ProposalStatusActive   ProposalStatus = 1
	ProposalStatusPassed   ProposalStatus = 2
	ProposalStatusRejected ProposalStatus = 3
)

type VoteChoice uint8

const (
	VoteAbstain VoteChoice = 0
	VoteFor     VoteChoice = 1
	VoteAgainst VoteChoice = 2
)

type Proposal struct {
	Index           uint64         `json:"index"`
	Kind            ProposalKind   `json:"kind"`
	Title           string         `json:"title"`
	Data            []byte         `json:"data"`
	Proposer        uint64         `json:"proposer"`
	ProposerAddress string         `json:"proposer_address"`
	Height          uint64         `json:"height"`
	CreateTime      int64          `json:"create_time"`
	Deadline        int64          `json:"deadline"`
	Status          ProposalStatus `json:"status"`
	Threshold       uint64         `json:"threshold"`
	ForVotes        uint64         `json:"for_votes"`
	AgainstVotes    uint64         `json:"against_votes"`
}

// Passed reports whether the for-share of the votes cast reaches the
// stored threshold. A proposal with no votes cast never passes.
func (p *Proposal) Passed() bool {
	total := p.ForVotes + p.AgainstVotes
	if total == 0 {
		return false
	}
	return p.ForVotes*100 >= total*p.Threshold
}

// Company is the register written by the one-time initCompany transaction.
// Height records the block it was initialized at.
type Company struct {
	Name        string `json:"name"`
	TotalShares uint64 `json:"total_shares"`
	Height      uint64 `json:"height"`
}
