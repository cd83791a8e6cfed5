package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdForKind(t *testing.T) {
	assert.Equal(t, uint64(50), ThresholdForKind(KindGeneral))
	assert.Equal(t, uint64(60), ThresholdForKind(KindDirectorElection))
	assert.Equal(t, uint64(75), ThresholdForKind(KindMerger))
	assert.Equal(t, uint64(50), ThresholdForKind(KindDividend))
	assert.Equal(t, uint64(50), ThresholdForKind(KindCompensation))
	assert.Equal(t, uint64(50), ThresholdForKind(KindBylawAmendment))
}

func TestProposalPassed(t *testing.T) {
	// pass needs for*100 >= total*threshold, abstentions never count
	cases := []struct {
		name      string
		forVotes  uint64
		against   uint64
		threshold uint64
		want      bool
	}{
		{"simple majority", 50000, 30000, 50, true},
		{"exact boundary passes", 50, 50, 50, true},
		{"below threshold", 59, 41, 60, false},
		{"supermajority boundary", 75, 25, 75, true},
		{"supermajority short", 74, 26, 75, false},
		{"no votes at all", 0, 0, 50, false},
		{"only against", 0, 10, 50, false},
		{"unanimous for", 10, 0, 75, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := Proposal{ForVotes: c.forVotes, AgainstVotes: c.against, Threshold: c.threshold}
			assert.Equal(t, c.want, p.Passed())
		})
	}
}
