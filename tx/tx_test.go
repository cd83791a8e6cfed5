package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalGovTxDispatch(t *testing.T) {
	btx := &GovTx{
		Version: GovTxVersion1,
		Type:    GovTxTypeVote,
		Nonce:   4,
		Sender:  65536,
		Tx:      &VoteTx{Proposal: 2, Choice: 1},
	}
	dat, err := MarshalGovTx(btx)
	require.NoError(t, err)

	decoded, err := UnmarshalGovTx(dat)
	require.NoError(t, err)
	assert.Equal(t, GovTxTypeVote, decoded.Type)
	assert.Equal(t, uint64(65536), decoded.Sender)
	stx, ok := decoded.Tx.(*VoteTx)
	require.True(t, ok)
	assert.Equal(t, uint64(2), stx.Proposal)
	assert.Equal(t, uint8(1), stx.Choice)
}

func TestUnmarshalGovTxUnknownType(t *testing.T) {
	_, err := UnmarshalGovTx([]byte(`{"type":99}`))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalGovTx([]byte(`not json`))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)
}

func TestSigDataSaltsChainId(t *testing.T) {
	btx := &GovTx{
		Version: GovTxVersion1,
		Type:    GovTxTypeProposal,
		Nonce:   1,
		Sender:  65536,
		Tx:      &ProposalTx{Kind: 2, Title: "merge", VotingDays: 7},
		Sig:     [][]byte{{0xde, 0xad}},
	}
	a, err := btx.SigData([]byte("chain-a"))
	require.NoError(t, err)
	b, err := btx.SigData([]byte("chain-b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	// the envelope itself is untouched
	assert.Equal(t, [][]byte{{0xde, 0xad}}, btx.Sig)
}
