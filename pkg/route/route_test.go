package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanline/makeready/pkg/errors"
	"github.com/spanline/makeready/pkg/survey"
)

func pole(id, scid string) *survey.Node {
	return &survey.Node{ID: id, SCID: scid, RawSCID: scid, Role: survey.RolePole}
}

func reference(id, scid string) *survey.Node {
	return &survey.Node{ID: id, SCID: scid, RawSCID: scid, Role: survey.RoleReference}
}

func edge(n1, n2, conn, span string) *survey.Edge {
	return &survey.Edge{NodeID1: n1, NodeID2: n2, ConnectionID: conn, SpanDistance: span}
}

func TestBuildAutomatic(t *testing.T) {
	nodes := []*survey.Node{
		pole("n2", "2"),
		pole("n1", "1"),
		reference("n3", "3"),
		{ID: "n4", SCID: "4", Role: survey.RolePole, Status: survey.StatusUnderground},
	}
	edges := []*survey.Edge{
		edge("n2", "n1", "c1", "100"),
		edge("n1", "n2", "c1dup", "100"), // same unordered pair
		edge("n3", "n1", "c2", "50"),     // reference first
		edge("n1", "n4", "c3", "75"),     // underground endpoint
	}

	g, err := Build(nodes, edges, Options{})
	require.NoError(t, err)
	require.Len(t, g.Spans, 2)

	// sorted by from SCID; reference forced into the to position
	assert.Equal(t, "1", g.Spans[0].From)
	assert.Equal(t, "3", g.Spans[0].To)
	assert.Equal(t, "c2", g.Spans[0].ConnectionID)
	assert.Equal(t, "2", g.Spans[1].From)
	assert.Equal(t, "1", g.Spans[1].To)
}

func TestBuildNoValidNetwork(t *testing.T) {
	nodes := []*survey.Node{
		{ID: "n1", SCID: "1", Role: survey.RolePole, Status: survey.StatusUnderground},
	}
	_, err := Build(nodes, nil, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsNoValidNetwork(err))
}

func TestBuildDedupeFirstWins(t *testing.T) {
	first := pole("n1", "7")
	second := pole("n2", "7")
	g, err := Build([]*survey.Node{first, second}, nil, Options{})
	require.NoError(t, err)
	assert.Same(t, first, g.NodeBySCID["7"])
}

func TestBuildManualRouteOverride(t *testing.T) {
	nodes := []*survey.Node{
		pole("na", "A"), pole("nb", "B"), pole("nc", "C"), pole("nd", "D"),
	}
	edges := []*survey.Edge{
		edge("na", "nb", "c1", "100"),
		edge("nb", "nc", "c2", "110"),
		edge("na", "nd", "c3", "90"), // unrelated automatic edge
	}

	g, err := Build(nodes, edges, Options{
		Manual: []ManualRoute{{Line: 1, Poles: []string{"A", "B", "C"}}},
	})
	require.NoError(t, err)
	require.Len(t, g.Spans, 3)

	assert.Equal(t, "A", g.Spans[0].From)
	assert.Equal(t, "B", g.Spans[0].To)
	assert.Equal(t, "B", g.Spans[1].From)
	assert.Equal(t, "C", g.Spans[1].To)
	assert.Equal(t, "C", g.Spans[2].From)
	assert.Equal(t, "", g.Spans[2].To)
	assert.True(t, g.Spans[2].Terminus)
}

func TestBuildManualRouteMissingEdges(t *testing.T) {
	nodes := []*survey.Node{pole("na", "A"), pole("nb", "B"), pole("nc", "C")}
	edges := []*survey.Edge{edge("na", "nb", "c1", "100")}

	_, err := Build(nodes, edges, Options{
		Manual: []ManualRoute{{Line: 1, Poles: []string{"A", "C", "B"}}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidManualRoute(err))

	var mre *errors.ManualRouteError
	require.True(t, errors.As(err, &mre))
	// both broken hops reported in one error
	assert.Equal(t, [][2]string{{"A", "C"}, {"C", "B"}}, mre.Missing)
}

func TestBuildQCOrderAndLiterals(t *testing.T) {
	nodes := []*survey.Node{pole("n1", "1"), pole("n2", "2"), pole("n3", "3")}
	edges := []*survey.Edge{
		edge("n1", "n2", "c1", "100"),
		edge("n2", "n3", "c2", "110"),
	}

	g, err := Build(nodes, edges, Options{
		QC: []Override{
			{FromRaw: "003", ToRaw: "002", From: "3", To: "2"},
			{FromRaw: "001", ToRaw: "002", From: "1", To: "2"},
			{FromRaw: "009", ToRaw: "010", From: "9", To: "10"},
		},
	})
	require.NoError(t, err)
	require.Len(t, g.Spans, 3)

	// literal QC order and text preserved, no sorting
	assert.Equal(t, "003", g.Spans[0].DisplayFrom)
	assert.Equal(t, "c2", g.Spans[0].ConnectionID)
	assert.Equal(t, "001", g.Spans[1].DisplayFrom)

	// pair with no survey match still yields a span
	assert.Equal(t, "009", g.Spans[2].DisplayFrom)
	assert.Equal(t, "", g.Spans[2].ConnectionID)
	assert.Nil(t, g.Spans[2].FromNode)
}

func TestParseManualRoutes(t *testing.T) {
	text := "001, 002, 003; 005,006\n\n007\n010,011"
	routes := ParseManualRoutes(text, nil)
	require.Len(t, routes, 3)

	assert.Equal(t, []string{"1", "2", "3"}, routes[0].Poles)
	assert.Equal(t, 1, routes[0].Line)
	assert.Equal(t, []string{"5", "6"}, routes[1].Poles)
	assert.Equal(t, []string{"10", "11"}, routes[2].Poles)
	assert.Equal(t, 4, routes[2].Line)
}
