// Package export writes resolved make-ready rows as CSV for the output
// template layer.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/spanline/makeready/pkg/config"
	"github.com/spanline/makeready/pkg/survey"
)

// WriteCSV writes rows with one column per output field. Provider columns
// follow the configured provider order.
func WriteCSV(w io.Writer, cfg *config.Config, rows []*survey.OutputRow) error {
	cw := csv.NewWriter(w)

	providers := cfg.ProviderNames()
	header := []string{
		"Pole", "To Pole", "Span Length", "Address", "Pole Height/Class",
		"Guy Lead", "Guy Direction", "Guy Size", "Existing Risers",
		"Power Height", "Power Midspan",
		"Street Light Height", "Streetlight (bottom of bracket)",
	}
	for _, p := range providers {
		header = append(header, p)
	}
	for _, p := range providers {
		header = append(header, p+" Midspan")
	}
	header = append(header,
		"Comm1", "Comm2", "Comm3", "Comm4",
		"Comm1 Midspan", "Comm2 Midspan", "Comm3 Midspan", "Comm4 Midspan",
		"All Comm Heights", "Comm Count", "Notes",
		"Latitude", "Longitude", "Tension",
	)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.Pole, row.ToPole, row.SpanLength, row.Address, row.PoleHeightClass,
			row.GuyLead, row.GuyDirection, row.GuySize, row.ExistingRisers,
			row.PowerHeight, row.PowerMidspan,
			row.StreetlightHeight, row.StreetlightBracket,
		}
		for _, p := range providers {
			record = append(record, row.Providers[p])
		}
		for _, p := range providers {
			record = append(record, row.ProviderMidspans[p])
		}
		record = append(record, row.Comm[0], row.Comm[1], row.Comm[2], row.Comm[3])
		record = append(record, row.CommMidspan[0], row.CommMidspan[1], row.CommMidspan[2], row.CommMidspan[3])
		record = append(record, row.AllCommHeights, row.CommCount, row.Notes)
		if row.HasCoords {
			record = append(record,
				strconv.FormatFloat(row.Latitude, 'f', 6, 64),
				strconv.FormatFloat(row.Longitude, 'f', 6, 64))
		} else {
			record = append(record, "", "")
		}
		record = append(record, row.Tension)

		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
