// Package route assembles the ordered pole-to-pole travel list from the
// surveyed node and connection sets. Exactly one route source is
// authoritative per run: QC pairs beat manual routes beat automatic edges.
package route

import (
	"sort"
	"strings"

	"github.com/spanline/makeready/pkg/errors"
	"github.com/spanline/makeready/pkg/logging"
	"github.com/spanline/makeready/pkg/scid"
	"github.com/spanline/makeready/pkg/survey"
)

// Span is one directed output edge. To is empty on a route terminus.
type Span struct {
	From string // normalized
	To   string // normalized, "" on a terminus

	// DisplayFrom and DisplayTo carry the identifier text for the output
	// columns. Under QC routing they hold QC's literal cell text.
	DisplayFrom string
	DisplayTo   string

	ConnectionID string
	SpanDistance string // raw feet value from the connection sheet

	FromNode *survey.Node // nil when the identifier matches no surveyed node
	ToNode   *survey.Node

	Terminus bool
}

// Override is one QC-supplied ordered pair: literal cell text plus the
// normalized forms used for lookups.
type Override struct {
	FromRaw string
	ToRaw   string
	From    string
	To      string
}

// ManualRoute is one ordered pole list parsed from manual route text.
type ManualRoute struct {
	Line  int
	Poles []string // normalized
}

// Options selects the route source and normalization keywords.
type Options struct {
	Ignore []string
	Manual []ManualRoute
	QC     []Override
}

// Graph is the assembled network: ordered spans plus the lookup maps the
// resolvers read from.
type Graph struct {
	Spans []*Span

	NodeBySCID map[string]*survey.Node
	NodeByID   map[string]*survey.Node

	// Edges holds every raw connection, kept for section fallback lookups.
	Edges []*survey.Edge
}

// Build filters nodes, deduplicates edges, and assembles spans from the
// authoritative route source. It fails with NoValidNetworkError when no
// pole or reference node survives filtering, and with ManualRouteError when
// a manual route names a connection absent from the export.
func Build(nodes []*survey.Node, edges []*survey.Edge, opts Options) (*Graph, error) {
	g := &Graph{
		NodeBySCID: make(map[string]*survey.Node),
		NodeByID:   make(map[string]*survey.Node),
		Edges:      edges,
	}

	excluded := 0
	for _, n := range nodes {
		if !n.IsPole() && !n.IsReference() {
			excluded++
			continue
		}
		if n.Status == survey.StatusUnderground {
			excluded++
			continue
		}
		// first occurrence of a normalized SCID wins
		if _, dup := g.NodeBySCID[n.SCID]; !dup {
			g.NodeBySCID[n.SCID] = n
		}
		if n.ID != "" {
			if _, dup := g.NodeByID[n.ID]; !dup {
				g.NodeByID[n.ID] = n
			}
		}
	}
	if len(g.NodeBySCID) == 0 {
		return nil, &errors.NoValidNetworkError{TotalNodes: len(nodes), Excluded: excluded}
	}

	valid := g.validEdges(edges)

	switch {
	case len(opts.QC) > 0:
		g.buildQC(opts.QC, valid)
	case len(opts.Manual) > 0:
		if err := g.buildManual(opts.Manual, valid); err != nil {
			return nil, err
		}
	default:
		g.buildAutomatic(valid)
	}
	return g, nil
}

// validEdges keeps edges between two valid nodes, deduplicated by unordered
// endpoint pair, preserving input order.
func (g *Graph) validEdges(edges []*survey.Edge) []*survey.Edge {
	seen := make(map[string]bool, len(edges))
	var out []*survey.Edge
	for _, e := range edges {
		n1, n2 := g.NodeByID[e.NodeID1], g.NodeByID[e.NodeID2]
		if n1 == nil || n2 == nil {
			continue
		}
		key := pairKey(e.NodeID1, e.NodeID2)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func (g *Graph) buildAutomatic(valid []*survey.Edge) {
	for _, e := range valid {
		n1, n2 := g.NodeByID[e.NodeID1], g.NodeByID[e.NodeID2]
		var from, to *survey.Node
		switch {
		case n1.IsPole() && n2.IsReference():
			from, to = n1, n2
		case n1.IsReference() && n2.IsPole():
			from, to = n2, n1
		case n1.IsPole() && n2.IsPole():
			from, to = n1, n2
		default:
			// reference to reference carries no make-ready work
			continue
		}
		g.Spans = append(g.Spans, &Span{
			From:         from.SCID,
			To:           to.SCID,
			DisplayFrom:  from.SCID,
			DisplayTo:    to.SCID,
			ConnectionID: e.ConnectionID,
			SpanDistance: e.SpanDistance,
			FromNode:     from,
			ToNode:       to,
		})
	}
	sort.SliceStable(g.Spans, func(i, j int) bool {
		return scid.Less(g.Spans[i].From, g.Spans[j].From)
	})
}

func (g *Graph) buildManual(routes []ManualRoute, valid []*survey.Edge) error {
	bySCIDPair := edgesBySCIDPair(g, valid)

	var missing [][2]string
	for _, r := range routes {
		for i := 0; i+1 < len(r.Poles); i++ {
			if _, ok := bySCIDPair[pairKey(r.Poles[i], r.Poles[i+1])]; !ok {
				missing = append(missing, [2]string{r.Poles[i], r.Poles[i+1]})
			}
		}
	}
	if len(missing) > 0 {
		return &errors.ManualRouteError{Missing: missing}
	}

	for _, r := range routes {
		for i := 0; i+1 < len(r.Poles); i++ {
			from, to := r.Poles[i], r.Poles[i+1]
			e := bySCIDPair[pairKey(from, to)]
			g.Spans = append(g.Spans, &Span{
				From:         from,
				To:           to,
				DisplayFrom:  from,
				DisplayTo:    to,
				ConnectionID: e.ConnectionID,
				SpanDistance: e.SpanDistance,
				FromNode:     g.NodeBySCID[from],
				ToNode:       g.NodeBySCID[to],
			})
		}
		last := r.Poles[len(r.Poles)-1]
		g.Spans = append(g.Spans, &Span{
			From:        last,
			DisplayFrom: last,
			FromNode:    g.NodeBySCID[last],
			Terminus:    true,
		})
	}
	return nil
}

// buildQC emits one span per QC pair in literal order. Pairs with no
// matching connection retry by base identifier, since QC text often carries
// trailing annotations ("118 MISM013"); pairs that still miss produce a span
// with empty connection data.
func (g *Graph) buildQC(overrides []Override, valid []*survey.Edge) {
	bySCIDPair := edgesBySCIDPair(g, valid)

	var byBasePair map[string]*survey.Edge
	baseLookup := func(from, to string) (*survey.Edge, bool) {
		if byBasePair == nil {
			byBasePair = make(map[string]*survey.Edge, len(valid))
			for _, e := range valid {
				n1, n2 := g.NodeByID[e.NodeID1], g.NodeByID[e.NodeID2]
				key := pairKey(scid.Base(n1.SCID), scid.Base(n2.SCID))
				if _, dup := byBasePair[key]; !dup {
					byBasePair[key] = e
				}
			}
		}
		e, ok := byBasePair[pairKey(scid.Base(from), scid.Base(to))]
		return e, ok
	}

	for _, o := range overrides {
		s := &Span{
			From:        o.From,
			To:          o.To,
			DisplayFrom: o.FromRaw,
			DisplayTo:   o.ToRaw,
			FromNode:    g.NodeBySCID[o.From],
			ToNode:      g.NodeBySCID[o.To],
		}
		e, ok := bySCIDPair[pairKey(o.From, o.To)]
		if !ok {
			e, ok = baseLookup(o.From, o.To)
		}
		if ok {
			s.ConnectionID = e.ConnectionID
			s.SpanDistance = e.SpanDistance
		} else {
			logging.Debug().Str("from", o.FromRaw).Str("to", o.ToRaw).
				Msg("no surveyed connection for QC pair")
		}
		g.Spans = append(g.Spans, s)
	}
}

func edgesBySCIDPair(g *Graph, valid []*survey.Edge) map[string]*survey.Edge {
	m := make(map[string]*survey.Edge, len(valid))
	for _, e := range valid {
		n1, n2 := g.NodeByID[e.NodeID1], g.NodeByID[e.NodeID2]
		key := pairKey(n1.SCID, n2.SCID)
		if _, dup := m[key]; !dup {
			m[key] = e
		}
	}
	return m
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

// ParseManualRoutes parses manual route text: one or more lines, each
// holding one or more semicolon-separated routes of comma-separated pole
// identifiers. Routes with fewer than two poles are skipped with a warning.
func ParseManualRoutes(text string, ignore []string) []ManualRoute {
	var routes []ManualRoute
	for lineNum, line := range strings.Split(strings.TrimSpace(text), "\n") {
		for _, segment := range strings.Split(line, ";") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			var poles []string
			for _, p := range strings.Split(segment, ",") {
				if p = strings.TrimSpace(p); p != "" {
					poles = append(poles, scid.Normalize(p, ignore))
				}
			}
			if len(poles) < 2 {
				logging.Warn().Int("line", lineNum+1).Str("route", segment).
					Msg("skipping manual route with fewer than 2 poles")
				continue
			}
			routes = append(routes, ManualRoute{Line: lineNum + 1, Poles: poles})
		}
	}
	return routes
}
