package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanline/makeready/pkg/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSurvey(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Nodes: writeFile(t, dir, "nodes.csv",
			"node_id,scid,node_type,pole_status\nn1,001,pole,\nn2,002,reference,\n"),
		Connections: writeFile(t, dir, "connections.csv",
			"node_id_1,node_id_2,connection_id,span_distance\nn1,n2,c1,120\n"),
		Sections: writeFile(t, dir, "sections.csv",
			"connection_id,POA_1,POA_1HT\nc1,MetroNet Com,22.5\n"),
		Attachments: writeFile(t, dir, "attachments.csv",
			"scid,company,measured,height_in_inches\n001,Comcast,CATV Com,300\n001,Verizon,Telco Com,276\n005,Ghost,CATV Com,100\n"),
	}

	data, err := LoadSurvey(config.Default(), paths)
	require.NoError(t, err)

	assert.Len(t, data.Nodes, 2)
	assert.Len(t, data.Edges, 1)
	assert.Len(t, data.Sections, 1)

	// grouped by scid; pole 005 dropped because it is not a surveyed node
	require.Contains(t, data.Attachments, "1")
	assert.Len(t, data.Attachments["1"], 2)
	assert.NotContains(t, data.Attachments, "5")
}

func TestLoadSurveyMissingFile(t *testing.T) {
	_, err := LoadSurvey(config.Default(), Paths{
		Nodes:       filepath.Join(t.TempDir(), "absent.csv"),
		Connections: "x",
	})
	assert.Error(t, err)
}

func TestLoadQC(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "qc.csv",
		"Make Ready QC Export,,\nPole,To Pole,Span Length\n001,002,120\n")
	empty := writeFile(t, dir, "notes.csv", "a,b\n1,2\n")

	sheet, err := LoadQC([]string{good, empty}, nil)
	require.NoError(t, err)
	require.True(t, sheet.Active())
	require.Len(t, sheet.Pairs(), 1)
	assert.Equal(t, "1", sheet.Pairs()[0].From)
	assert.Equal(t, "120", sheet.Pairs()[0].SpanLength())
}

func TestLoadRoutes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "routes.txt", "001,002,003\n")

	routes, err := LoadRoutes(path, nil)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, []string{"1", "2", "3"}, routes[0].Poles)
}
