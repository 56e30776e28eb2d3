// Package qc reads the human-curated QC correction sheet. When present, QC
// pair order is authoritative for output, QC identifiers restrict the pole
// universe, and QC span lengths replace surveyed ones within a tolerance.
package qc

import (
	"strconv"
	"strings"

	"github.com/spanline/makeready/internal/tabular"
	"github.com/spanline/makeready/pkg/logging"
	"github.com/spanline/makeready/pkg/scid"
)

// Pair is one QC row: the literal cell text, the normalized forms used for
// lookups, and every extra column on the row.
type Pair struct {
	FromRaw string
	ToRaw   string
	From    string
	To      string
	Extra   map[string]string
}

// SpanLength returns the pair's QC span value, found in the first extra
// column whose name contains "span". Empty when QC supplies none.
func (p *Pair) SpanLength() string {
	for col, v := range p.Extra {
		if strings.Contains(col, "span") && v != "" {
			return v
		}
	}
	return ""
}

// Sheet is the loaded QC correction data across all tabs.
type Sheet struct {
	pairs []Pair
	scids map[string]bool
	conns map[string]bool
}

// FromTables collects QC pairs from sheet tabs, in tab then row order. Tabs
// without Pole and To Pole columns are skipped with a warning. Rows with
// either identifier blank are dropped.
func FromTables(tabs []*tabular.Table, ignore []string) *Sheet {
	s := &Sheet{
		scids: make(map[string]bool),
		conns: make(map[string]bool),
	}
	for _, t := range tabs {
		if missing := t.MissingColumns("pole", "to pole"); len(missing) > 0 {
			logging.Warn().Str("sheet", t.Name).Strs("missing", missing).
				Msg("skipping QC tab without pole columns")
			continue
		}
		for i := 0; i < t.Len(); i++ {
			row := t.Row(i)
			fromRaw, toRaw := row.Get("pole"), row.Get("to pole")
			if fromRaw == "" || toRaw == "" {
				continue
			}
			p := Pair{
				FromRaw: fromRaw,
				ToRaw:   toRaw,
				From:    scid.Normalize(fromRaw, ignore),
				To:      scid.Normalize(toRaw, ignore),
				Extra:   make(map[string]string),
			}
			for _, col := range t.Columns() {
				if col == "pole" || col == "to pole" || col == "" {
					continue
				}
				p.Extra[col] = row.Get(col)
			}
			s.pairs = append(s.pairs, p)
			s.scids[p.From] = true
			s.scids[p.To] = true
			s.conns[connKey(p.From, p.To)] = true
		}
	}
	logging.Info().Int("pairs", len(s.pairs)).Int("scids", len(s.scids)).
		Msg("loaded QC sheet")
	return s
}

// Active reports whether any QC pair was loaded.
func (s *Sheet) Active() bool {
	return s != nil && len(s.pairs) > 0
}

// Pairs returns the QC pairs in sheet order.
func (s *Sheet) Pairs() []Pair {
	if s == nil {
		return nil
	}
	return s.pairs
}

// SCIDs returns the normalized identifier universe named by QC.
func (s *Sheet) SCIDs() map[string]bool {
	if s == nil {
		return nil
	}
	return s.scids
}

// Has reports whether a normalized pair appears in QC, in either direction.
func (s *Sheet) Has(from, to string) bool {
	if !s.Active() {
		return false
	}
	return s.conns[connKey(from, to)]
}

func connKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

// MergeSpan reconciles a surveyed span length with a QC-supplied one. When
// both parse and differ by no more than tol feet, QC wins as the corrected
// value within measurement noise; a larger difference keeps the survey
// value. A missing side yields the other.
func MergeSpan(surveySpan, qcSpan string, tol float64) string {
	sv, sok := parseSpan(surveySpan)
	qv, qok := parseSpan(qcSpan)
	switch {
	case sok && qok:
		if diff := sv - qv; diff <= tol && diff >= -tol {
			return qcSpan
		}
		return surveySpan
	case qok:
		return qcSpan
	default:
		return surveySpan
	}
}

func parseSpan(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "'")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
