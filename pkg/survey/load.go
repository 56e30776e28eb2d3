package survey

import (
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"

	"github.com/spanline/makeready/internal/tabular"
	"github.com/spanline/makeready/pkg/errors"
	"github.com/spanline/makeready/pkg/logging"
	"github.com/spanline/makeready/pkg/scid"
)

// attachmentSheetPrefix names the per-pole attachment tabs.
const attachmentSheetPrefix = "SCID "

// NodesFromTable converts a node sheet into Nodes. SCIDs are normalized with
// the given ignore keywords; rows with a blank SCID are dropped.
func NodesFromTable(t *tabular.Table, ignore []string) ([]*Node, error) {
	if missing := t.MissingColumns("scid", "node_type"); len(missing) > 0 {
		return nil, &errors.SheetError{Sheet: t.Name, Missing: missing}
	}

	nodes := make([]*Node, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		raw := row.Get("scid")
		if raw == "" {
			continue
		}
		n := &Node{
			ID:           row.Get("node_id"),
			SCID:         scid.Normalize(raw, ignore),
			RawSCID:      raw,
			Role:         strings.ToLower(row.Get("node_type")),
			Status:       strings.ToLower(row.Get("pole_status")),
			Note:         row.Get("note"),
			MRNote:       row.Get("mr_note"),
			InternalNote: row.Get("internal_note"),
			PoleHeight:   row.Get("pole_height"),
			PoleClass:    row.Get("pole_class"),
			Address:      row.Get("address"),
			Owners:       ownerPairs(t, row),
		}
		if lat, lon, ok := parseCoords(row); ok {
			n.Coord = geom.NewPointFlat(geom.XY, []float64{lon, lat})
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func parseCoords(row tabular.Row) (lat, lon float64, ok bool) {
	lat, err1 := strconv.ParseFloat(row.Get("latitude"), 64)
	lon, err2 := strconv.ParseFloat(row.Get("longitude"), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// EdgesFromTable converts a connection sheet into Edges. Rows missing either
// node ID are dropped.
func EdgesFromTable(t *tabular.Table) ([]*Edge, error) {
	if missing := t.MissingColumns("node_id_1", "node_id_2"); len(missing) > 0 {
		return nil, &errors.SheetError{Sheet: t.Name, Missing: missing}
	}

	edges := make([]*Edge, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		e := &Edge{
			NodeID1:      row.Get("node_id_1"),
			NodeID2:      row.Get("node_id_2"),
			ConnectionID: row.Get("connection_id"),
			SpanDistance: row.Get("span_distance"),
		}
		if e.NodeID1 == "" || e.NodeID2 == "" {
			continue
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// SectionsFromTable converts a midspan section sheet into SectionRecords.
// Rows without a connection ID or without any owner/height pair are dropped.
func SectionsFromTable(t *tabular.Table) ([]*SectionRecord, error) {
	if missing := t.MissingColumns("connection_id"); len(missing) > 0 {
		return nil, &errors.SheetError{Sheet: t.Name, Missing: missing}
	}

	sections := make([]*SectionRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		s := &SectionRecord{
			ConnectionID: row.Get("connection_id"),
			Pairs:        ownerPairs(t, row),
		}
		if s.ConnectionID == "" || len(s.Pairs) == 0 {
			continue
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// ownerPairs collects the POA owner/height column pairs present on a row.
// A height column "poa_<n>ht" pairs with the owner column "poa_<n>".
func ownerPairs(t *tabular.Table, row tabular.Row) []OwnerHeight {
	var pairs []OwnerHeight
	for _, col := range t.Columns() {
		if !strings.HasPrefix(col, "poa_") || strings.HasSuffix(col, "ht") {
			continue
		}
		owner := row.Get(col)
		if owner == "" {
			continue
		}
		pairs = append(pairs, OwnerHeight{
			Owner:  owner,
			Height: row.Get(col + "ht"),
		})
	}
	return pairs
}

// AttachmentsFromTables builds the attachment map from per-pole tabs. Only
// tabs named "SCID <id>" participate; tabs missing required columns are
// skipped with a warning. When validSCIDs is non-nil, tabs whose normalized
// SCID is absent from it are skipped.
func AttachmentsFromTables(tabs []*tabular.Table, ignore []string, validSCIDs map[string]bool) map[string][]AttachmentRecord {
	out := make(map[string][]AttachmentRecord)
	for _, t := range tabs {
		if !strings.HasPrefix(t.Name, attachmentSheetPrefix) {
			continue
		}
		id := scid.Normalize(strings.TrimPrefix(t.Name, attachmentSheetPrefix), ignore)
		if validSCIDs != nil && !validSCIDs[id] {
			logging.Debug().Str("sheet", t.Name).Str("scid", id).
				Msg("skipping attachment sheet for unknown pole")
			continue
		}
		if missing := t.MissingColumns("company", "measured", "height_in_inches"); len(missing) > 0 {
			logging.Warn().Str("sheet", t.Name).Strs("missing", missing).
				Msg("skipping attachment sheet with missing columns")
			continue
		}
		records := make([]AttachmentRecord, 0, t.Len())
		for i := 0; i < t.Len(); i++ {
			row := t.Row(i)
			if row.Empty() {
				continue
			}
			records = append(records, AttachmentRecord{
				Company:        row.Get("company"),
				Measured:       row.Get("measured"),
				HeightInInches: row.Get("height_in_inches"),
			})
		}
		out[id] = records
	}
	return out
}
