package makeready

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanline/makeready/internal/tabular"
	"github.com/spanline/makeready/pkg/config"
	"github.com/spanline/makeready/pkg/errors"
	"github.com/spanline/makeready/pkg/qc"
	"github.com/spanline/makeready/pkg/route"
	"github.com/spanline/makeready/pkg/survey"
)

func testData() *survey.Data {
	return &survey.Data{
		Nodes: []*survey.Node{
			{
				ID: "n1", SCID: "1", RawSCID: "001", Role: survey.RolePole,
				Address:    "100 Main St",
				PoleHeight: "40", PoleClass: "4",
				MRNote: "ANCHOR 10' W",
				Owners: []survey.OwnerHeight{
					{Owner: "Comcast Riser", Height: "20.0"},
					{Owner: "Proposed MetroNet Riser", Height: "18.0"},
				},
			},
			{ID: "n2", SCID: "2", RawSCID: "002", Role: survey.RolePole},
			{ID: "n3", SCID: "3", RawSCID: "003", Role: survey.RoleReference},
		},
		Edges: []*survey.Edge{
			{NodeID1: "n1", NodeID2: "n2", ConnectionID: "c1", SpanDistance: "123.4"},
			{NodeID1: "n2", NodeID2: "n3", ConnectionID: "c2", SpanDistance: "50"},
		},
		Sections: []*survey.SectionRecord{
			{ConnectionID: "c1", Pairs: []survey.OwnerHeight{
				{Owner: "Proposed MetroNet Com", Height: "22.5"},
				{Owner: "CONSUMERS ENERGY Neutral", Height: "27.0"},
			}},
		},
		Attachments: map[string][]survey.AttachmentRecord{
			"1": {
				{Company: "CONSUMERS ENERGY", Measured: "Neutral", HeightInInches: "348"},
				{Company: "Comcast", Measured: "CATV Com", HeightInInches: "300"},
				{Company: "Proposed MetroNet", Measured: "Fiber Optic Com", HeightInInches: "276"},
			},
		},
	}
}

func TestRunAutomaticRouting(t *testing.T) {
	p, err := New(config.Default())
	require.NoError(t, err)

	res, err := p.Run(context.Background(), testData())
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)
	require.Len(t, res.Rows, 2)

	row := res.Rows[0]
	assert.Equal(t, "1", row.Pole)
	assert.Equal(t, "2", row.ToPole)
	assert.Equal(t, "123'", row.SpanLength)
	assert.Equal(t, "100 Main St", row.Address)
	assert.Equal(t, "40>4", row.PoleHeightClass)
	assert.Equal(t, "10'", row.GuyLead)
	assert.Equal(t, "W", row.GuyDirection)
	assert.Equal(t, "1", row.ExistingRisers) // primary provider riser excluded
	assert.Equal(t, `29' 0"`, row.PowerHeight)
	assert.Equal(t, `25' 0"`, row.Provider("Comcast"))
	assert.Equal(t, `23' 0"`, row.Provider("Proposed MetroNet"))
	assert.Equal(t, `22' 6"`, row.ProviderMidspans["Proposed MetroNet"])
	assert.Equal(t, `27' 0"`, row.PowerMidspan)
	assert.Equal(t, `25' 0"`, row.Comm[0])
	assert.Equal(t, "2", row.CommCount)

	// pole-to-reference row keeps the reference in the to column
	assert.Equal(t, "2", res.Rows[1].Pole)
	assert.Equal(t, "3", res.Rows[1].ToPole)

	assert.Equal(t, 2, res.Stats.Poles)
	assert.Equal(t, 1, res.Stats.References)
	assert.Equal(t, 2, res.Stats.RowsEmitted)
}

func TestRunProgressCancel(t *testing.T) {
	p, err := New(config.Default(), WithProgress(func(stage Stage, percent int, msg string) bool {
		return stage != StageResolve
	}))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), testData())
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
}

func TestRunContextCancel(t *testing.T) {
	p, err := New(config.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx, testData())
	assert.True(t, errors.IsCanceled(err))
}

func TestRunManualRoute(t *testing.T) {
	p, err := New(config.Default(), WithManualRoutes([]route.ManualRoute{
		{Line: 1, Poles: []string{"2", "1"}},
	}))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), testData())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	assert.Equal(t, "2", res.Rows[0].Pole)
	assert.Equal(t, "1", res.Rows[0].ToPole)
	assert.Equal(t, "1", res.Rows[1].Pole)
	assert.Equal(t, "", res.Rows[1].ToPole)
	assert.True(t, res.Rows[1].Terminus)
}

func TestRunQCOrderAndSpanMerge(t *testing.T) {
	sheet := qc.FromTables([]*tabular.Table{
		tabular.New("QC", []string{"Pole", "To Pole", "Span Length"}, [][]string{
			{"002", "003", ""},
			{"002", "001", "121"}, // within 3 ft of surveyed 123.4
			{"007", "008", "55"},  // no survey data at all
		}),
	}, nil)

	p, err := New(config.Default(), WithQC(sheet))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), testData())
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	// literal QC text and order win
	assert.Equal(t, "002", res.Rows[0].Pole)
	assert.Equal(t, "003", res.Rows[0].ToPole)
	assert.Equal(t, "002", res.Rows[1].Pole)
	assert.Equal(t, "121'", res.Rows[1].SpanLength)

	// QC pair with no survey match still emits a row
	assert.Equal(t, "007", res.Rows[2].Pole)
	assert.Equal(t, "", res.Rows[2].SpanLength)
	assert.Equal(t, "", res.Rows[2].PowerHeight)
}

func TestRunQCSpanOutsideTolerance(t *testing.T) {
	sheet := qc.FromTables([]*tabular.Table{
		tabular.New("QC", []string{"Pole", "To Pole", "Span Length"}, [][]string{
			{"001", "002", "150"},
		}),
	}, nil)

	p, err := New(config.Default(), WithQC(sheet))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), testData())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "123'", res.Rows[0].SpanLength)
}

func TestRunNoValidNetwork(t *testing.T) {
	p, err := New(config.Default())
	require.NoError(t, err)

	data := &survey.Data{Nodes: []*survey.Node{
		{ID: "n1", SCID: "1", Role: survey.RolePole, Status: survey.StatusUnderground},
	}}
	_, err = p.Run(context.Background(), data)
	assert.True(t, errors.IsNoValidNetwork(err))
}

type fixedGeocoder struct{ addr string }

func (g fixedGeocoder) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	return g.addr, nil
}

type fixedTension struct{ value float64 }

func (tc fixedTension) Tension(ctx context.Context, spanFeet, attachFeet float64) (float64, error) {
	return tc.value, nil
}

func TestRunExternalCollaborators(t *testing.T) {
	p, err := New(config.Default(),
		WithGeocoder(fixedGeocoder{addr: "42 Geo Ln"}),
		WithTensionCalculator(fixedTension{value: 812.5}),
	)
	require.NoError(t, err)

	data := testData()
	data.Nodes[0].Address = ""
	res, err := p.Run(context.Background(), data)
	require.NoError(t, err)

	// no coordinates on the node, so geocoding is skipped
	assert.Equal(t, "", res.Rows[0].Address)
	// tension uses the primary provider's lowest attachment
	assert.Equal(t, "812.50", res.Rows[0].Tension)
}
