package types

import (
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventVoteRoundTrip(t *testing.T) {
	ev := &EventVote{
		ProposalIndex: 3,
		Voter:         65537,
		VoterAddress:  "A3F2",
		Choice:        1,
		Weight:        50000,
	}
	decoded := DecodeEventVote(EncodeEventVote(ev))
	require.NotNil(t, decoded)
	assert.Equal(t, ev, decoded)
}

func TestEventSettleProposalRoundTrip(t *testing.T) {
	ev := &EventSettleProposal{
		ProposalIndex: 7,
		ForVotes:      50000,
		AgainstVotes:  30000,
		Passed:        true,
	}
	decoded := DecodeEventSettleProposal(EncodeEventSettleProposal(ev))
	require.NotNil(t, decoded)
	assert.Equal(t, ev, decoded)
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	ev := abci.Event{
		Type: EventVoteType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: "not-a-number"},
		},
	}
	assert.Nil(t, DecodeEventVote(ev))
}
