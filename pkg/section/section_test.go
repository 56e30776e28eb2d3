package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanline/makeready/pkg/survey"
)

func record(conn string, hs ...string) *survey.SectionRecord {
	s := &survey.SectionRecord{ConnectionID: conn}
	for _, h := range hs {
		s.Pairs = append(s.Pairs, survey.OwnerHeight{Owner: "owner", Height: h})
	}
	return s
}

func TestResolveSingleMatch(t *testing.T) {
	s := record("c1", "25.0")
	r := NewResolver([]*survey.SectionRecord{s}, nil)
	assert.Same(t, s, r.Resolve("c1", ""))
}

func TestResolveLowestOverallMinimum(t *testing.T) {
	a := record("c1", "24.0", "30.0")
	b := record("c1", "25.5")
	c := record("c1", "20.0", "28.0")
	r := NewResolver([]*survey.SectionRecord{a, b, c}, nil)

	assert.Same(t, c, r.Resolve("c1", ""))
}

func TestResolveTieFirstEncountered(t *testing.T) {
	a := record("c1", "20.0")
	b := record("c1", "20.0")
	r := NewResolver([]*survey.SectionRecord{a, b}, nil)
	assert.Same(t, a, r.Resolve("c1", ""))
}

func TestResolveUnparseableCandidateSkipped(t *testing.T) {
	a := record("c1", "junk")
	b := record("c1", "22.0")
	r := NewResolver([]*survey.SectionRecord{a, b}, nil)
	assert.Same(t, b, r.Resolve("c1", ""))
}

func TestResolveEdgeFallback(t *testing.T) {
	s := record("c2", "25.0")
	edges := []*survey.Edge{
		{NodeID1: "n1", NodeID2: "n2", ConnectionID: "c2"},
		{NodeID1: "n3", NodeID2: "n4", ConnectionID: "c3"},
	}
	r := NewResolver([]*survey.SectionRecord{s}, edges)

	// no section for c9, but n1 touches an edge whose connection has one
	assert.Same(t, s, r.Resolve("c9", "n1"))
	assert.Nil(t, r.Resolve("c9", "n5"))
	assert.Nil(t, r.Resolve("c9", ""))
}

func TestResolveNoMatch(t *testing.T) {
	r := NewResolver(nil, nil)
	require.Nil(t, r.Resolve("c1", "n1"))
}
