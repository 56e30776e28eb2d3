package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanline/makeready/pkg/config"
	"github.com/spanline/makeready/pkg/survey"
)

func TestWriteCSV(t *testing.T) {
	cfg := config.Default()

	row := survey.NewOutputRow("001", "002")
	row.SpanLength = "120'"
	row.PowerHeight = `29' 0"`
	row.SetProvider("Comcast", `25' 0"`)
	row.Comm[0] = `25' 0"`
	row.Latitude, row.Longitude, row.HasCoords = 42.25, -84.40, true

	terminus := survey.NewOutputRow("003", "")
	terminus.Terminus = true

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cfg, []*survey.OutputRow{row, terminus}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, "Pole", header[0])
	assert.Contains(t, header, "Comcast")
	assert.Contains(t, header, "Comcast Midspan")
	assert.Contains(t, header, "All Comm Heights")

	idx := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %q not found", name)
		return -1
	}

	assert.Equal(t, "001", records[1][idx("Pole")])
	assert.Equal(t, "120'", records[1][idx("Span Length")])
	assert.Equal(t, `25' 0"`, records[1][idx("Comcast")])
	assert.Equal(t, "42.250000", records[1][idx("Latitude")])

	// terminus row keeps the to column empty
	assert.Equal(t, "003", records[2][idx("Pole")])
	assert.Equal(t, "", records[2][idx("To Pole")])
	assert.Equal(t, "", records[2][idx("Latitude")])
}
