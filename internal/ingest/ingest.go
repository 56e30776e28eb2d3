// Package ingest reads the CSV exports the engine consumes: the network
// sheets, the combined attachment survey, manual route text, and QC sheets.
package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spanline/makeready/internal/tabular"
	"github.com/spanline/makeready/pkg/config"
	"github.com/spanline/makeready/pkg/errors"
	"github.com/spanline/makeready/pkg/logging"
	"github.com/spanline/makeready/pkg/qc"
	"github.com/spanline/makeready/pkg/route"
	"github.com/spanline/makeready/pkg/survey"
)

// Paths names the input files for one run. Attachments and QC are optional.
type Paths struct {
	Nodes       string
	Connections string
	Sections    string
	Attachments string
}

// LoadSurvey reads the network and attachment sheets into a survey model.
func LoadSurvey(cfg *config.Config, paths Paths) (*survey.Data, error) {
	nodesTab, err := readTable(paths.Nodes)
	if err != nil {
		return nil, err
	}
	nodes, err := survey.NodesFromTable(nodesTab, cfg.IgnoreSCIDKeywords)
	if err != nil {
		return nil, err
	}

	connsTab, err := readTable(paths.Connections)
	if err != nil {
		return nil, err
	}
	edges, err := survey.EdgesFromTable(connsTab)
	if err != nil {
		return nil, err
	}

	data := &survey.Data{Nodes: nodes, Edges: edges}

	if paths.Sections != "" {
		sectionsTab, err := readTable(paths.Sections)
		if err != nil {
			return nil, err
		}
		data.Sections, err = survey.SectionsFromTable(sectionsTab)
		if err != nil {
			return nil, err
		}
	}

	if paths.Attachments != "" {
		tabs, err := attachmentTabs(paths.Attachments)
		if err != nil {
			return nil, err
		}
		valid := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			valid[n.SCID] = true
		}
		data.Attachments = survey.AttachmentsFromTables(tabs, cfg.IgnoreSCIDKeywords, valid)
	}

	logging.Info().Int("nodes", len(data.Nodes)).Int("edges", len(data.Edges)).
		Int("sections", len(data.Sections)).Int("attachment_poles", len(data.Attachments)).
		Msg("survey data loaded")
	return data, nil
}

// attachmentTabs splits the combined attachment CSV into per-pole tables.
// The file carries an extra scid column; rows group by its value, and each
// group becomes a tab named the way the survey workbook names them.
func attachmentTabs(path string) ([]*tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	t, err := tabular.FromCSV(filepath.Base(path), f)
	if err != nil {
		return nil, err
	}
	if missing := t.MissingColumns("scid"); len(missing) > 0 {
		return nil, &errors.SheetError{Sheet: t.Name, Missing: missing}
	}

	header := []string{"company", "measured", "height_in_inches"}
	groups := make(map[string][][]string)
	var order []string
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		id := row.Get("scid")
		if id == "" {
			continue
		}
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], []string{
			row.Get("company"), row.Get("measured"), row.Get("height_in_inches"),
		})
	}

	tabs := make([]*tabular.Table, 0, len(order))
	for _, id := range order {
		tabs = append(tabs, tabular.New("SCID "+id, header, groups[id]))
	}
	return tabs, nil
}

// LoadQC reads one or more QC sheet files, auto-detecting the header row in
// each.
func LoadQC(paths []string, ignore []string) (*qc.Sheet, error) {
	var tabs []*tabular.Table
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.WrapIO("open", path, err)
		}
		t, err := tabular.FromCSVAuto(filepath.Base(path), f, "pole", "to pole")
		f.Close()
		if err != nil {
			if errors.IsMissingColumns(err) {
				logging.Warn().Str("file", path).Msg("skipping QC file without pole columns")
				continue
			}
			return nil, err
		}
		tabs = append(tabs, t)
	}
	return qc.FromTables(tabs, ignore), nil
}

// LoadRoutes reads a manual route text file.
func LoadRoutes(path string, ignore []string) ([]route.ManualRoute, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return route.ParseManualRoutes(string(data), ignore), nil
}

func readTable(path string) (*tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return tabular.FromCSV(name, f)
}
