package types

import (
	"fmt"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventCompanyInitType    = "company_init"
	EventShareholderType    = "shareholder_added"
	EventBoardType          = "board_added"
	EventProposalType       = "proposal_added"
	EventVoteType           = "vote_recorded"
	EventSettleProposalType = "proposal_settled"
)

type EventCompanyInit struct {
	Name           string `json:"name"`
	TotalShares    uint64 `json:"totalShares"`
	Creator        uint64 `json:"creatorIndex"`
	CreatorAddress string `json:"creatorAddress"`
}

func EncodeEventCompanyInit(event *EventCompanyInit) abci.Event {
	return abci.Event{
		Type: EventCompanyInitType,
		Attributes: []abci.EventAttribute{
			{Key: "name", Value: event.Name, Index: false},
			{Key: "totalShares", Value: fmt.Sprintf("%v", event.TotalShares), Index: false},
			{Key: "creator", Value: fmt.Sprintf("%v", event.Creator), Index: true},
			{Key: "creatorAddress", Value: event.CreatorAddress, Index: false},
		},
	}
}

func DecodeEventCompanyInit(originEvent abci.Event) *EventCompanyInit {
	event := &EventCompanyInit{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "name":
			event.Name = v.Value
		case "totalShares":
			shares, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.TotalShares = shares
		case "creator":
			creator, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Creator = creator
		case "creatorAddress":
			event.CreatorAddress = v.Value
		}
	}
	return event
}

type EventShareholder struct {
	Account   uint64 `json:"accountIndex"`
	Address   string `json:"address"`
	Shares    uint64 `json:"shares"`
	Name      string `json:"name"`
	Registrar uint64 `json:"registrarIndex"`
	Replaced  bool   `json:"replaced"`
}

func EncodeEventShareholder(event *EventShareholder) abci.Event {
	return abci.Event{
		Type: EventShareholderType,
		Attributes: []abci.EventAttribute{
			{Key: "account", Value: fmt.Sprintf("%v", event.Account), Index: true},
			{Key: "addr", Value: event.Address, Index: false},
			{Key: "shares", Value: fmt.Sprintf("%v", event.Shares), Index: false},
			{Key: "name", Value: event.Name, Index: false},
			{Key: "registrar", Value: fmt.Sprintf("%v", event.Registrar), Index: false},
			{Key: "replaced", Value: fmt.Sprintf("%v", event.Replaced), Index: false},
		},
	}
}

func DecodeEventShareholder(originEvent abci.Event) *EventShareholder {
	event := &EventShareholder{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "account":
			account, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Account = account
		case "addr":
			event.Address = v.Value
		case "shares":
			shares, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Shares = shares
		case "name":
			event.Name = v.Value
		case "registrar":
			registrar, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Registrar = registrar
		case "replaced":
			replaced, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Replaced = replaced
		}
	}
	return event
}

type EventBoard struct {
	Account uint64 `json:"accountIndex"`
	Address string `json:"address"`
	Granter uint64 `json:"granterIndex"`
}

func EncodeEventBoard(event *EventBoard) abci.Event {
	return abci.Event{
		Type: EventBoardType,
		Attributes: []abci.EventAttribute{
			{Key: "account", Value: fmt.Sprintf("%v", event.Account), Index: true},
			{Key: "addr", Value: event.Address, Index: false},
			{Key: "granter", Value: fmt.Sprintf("%v", event.Granter), Index: false},
		},
	}
}

func DecodeEventBoard(originEvent abci.Event) *EventBoard {
	event := &EventBoard{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "account":
			account, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Account = account
		case "addr":
			event.Address = v.Value
		case "granter":
			granter, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Granter = granter
		}
	}
	return event
}

type EventProposal struct {
	ProposalIndex   uint64 `json:"proposalIndex"`
	Proposer        uint64 `json:"proposerIndex"`
	ProposerAddress string `json:"proposerAddress"`
	Kind            uint64 `json:"kind"`
	Title           string `json:"title"`
	Threshold       uint64 `json:"threshold"`
	Deadline        int64  `json:"deadline"`
	Data            []byte `json:"data"`
}

func EncodeEventProposal(event *EventProposal) abci.Event {
	return abci.Event{
		Type: EventProposalType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.ProposalIndex), Index: true},
			{Key: "proposer", Value: fmt.Sprintf("%v", event.Proposer), Index: true},
			{Key: "proposerAddress", Value: event.ProposerAddress, Index: false},
			{Key: "kind", Value: fmt.Sprintf("%v", event.Kind), Index: false},
			{Key: "title", Value: event.Title, Index: false},
			{Key: "threshold", Value: fmt.Sprintf("%v", event.Threshold), Index: false},
			{Key: "deadline", Value: fmt.Sprintf("%v", event.Deadline), Index: false},
			{Key: "data", Value: string(event.Data), Index: false},
		},
	}
}

func DecodeEventProposal(originEvent abci.Event) *EventProposal {
	event := &EventProposal{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ProposalIndex = proposal
		case "proposer":
			proposer, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposer = proposer
		case "proposerAddress":
			event.ProposerAddress = v.Value
		case "kind":
			kind, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Kind = kind
		case "title":
			event.Title = v.Value
		case "threshold":
			threshold, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Threshold = threshold
		case "deadline":
			deadline, err := strconv.ParseInt(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Deadline = deadline
		case "data":
			event.Data = []byte(v.Value)
		}
	}
	return event
}

type EventVote struct {
	ProposalIndex uint64 `json:"proposalIndex"`
	Voter         uint64 `json:"voterIndex"`
	VoterAddress  string `json:"voterAddress"`
	Choice        uint64 `json:"choice"`
	Weight        uint64 `json:"weight"`
}

func EncodeEventVote(event *EventVote) abci.Event {
	return abci.Event{
		Type: EventVoteType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.ProposalIndex), Index: true},
			{Key: "voter", Value: fmt.Sprintf("%v", event.Voter), Index: true},
			{Key: "voterAddress", Value: event.VoterAddress, Index: false},
			{Key: "choice", Value: fmt.Sprintf("%v", event.Choice), Index: false},
			{Key: "weight", Value: fmt.Sprintf("%v", event.Weight), Index: false},
		},
	}
}

func DecodeEventVote(originEvent abci.Event) *EventVote {
	event := &EventVote{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ProposalIndex = proposal
		case "voter":
			voter, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Voter = voter
		case "voterAddress":
			event.VoterAddress = v.Value
		case "choice":
			choice, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Choice = choice
		case "weight":
			weight, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Weight = weight
		}
	}
	return event
}

type EventSettleProposal struct {
	ProposalIndex uint64 `json:"proposalIndex"`
	ForVotes      uint64 `json:"forVotes"`
	AgainstVotes  uint64 `json:"againstVotes"`
	Passed        bool   `json:"passed"`
}

func EncodeEventSettleProposal(event *EventSettleProposal) abci.Event {
	return abci.Event{
		Type: EventSettleProposalType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.ProposalIndex), Index: true},
			{Key: "for", Value: fmt.Sprintf("%v", event.ForVotes), Index: false},
			{Key: "against", Value: fmt.Sprintf("%v", event.AgainstVotes), Index: false},
			{Key: "passed", Value: fmt.Sprintf("%v", event.Passed), Index: false},
		},
	}
}

func DecodeEventSettleProposal(originEvent abci.Event) *EventSettleProposal {
	event := &EventSettleProposal{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ProposalIndex = proposal
		case "for":
			forVotes, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ForVotes = forVotes
		case "against":
			againstVotes, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.AgainstVotes = againstVotes
		case "passed":
			passed, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Passed = passed
		}
	}
	return event
}
