// Package makeready reconciles utility-pole survey data from independently
// maintained sources into one ordered set of make-ready engineering rows.
// It assembles the route network, classifies attachments, resolves midspan
// sections, and applies QC corrections, in that order.
package makeready

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spanline/makeready/pkg/attach"
	"github.com/spanline/makeready/pkg/config"
	"github.com/spanline/makeready/pkg/errors"
	"github.com/spanline/makeready/pkg/heights"
	"github.com/spanline/makeready/pkg/logging"
	"github.com/spanline/makeready/pkg/qc"
	"github.com/spanline/makeready/pkg/route"
	"github.com/spanline/makeready/pkg/section"
	"github.com/spanline/makeready/pkg/survey"
)

// Stage identifies a pipeline stage boundary.
type Stage string

// Pipeline stages, in execution order.
const (
	StageFilter    Stage = "filter"
	StageRoutes    Stage = "routes"
	StageResolve   Stage = "resolve"
	StageReconcile Stage = "reconcile"
	StageDone      Stage = "done"
)

// ProgressFunc receives stage-boundary progress. Returning false cancels
// the run; partial output is discarded.
type ProgressFunc func(stage Stage, percent int, message string) bool

// Geocoder resolves coordinates to a street address. Lookups that fail are
// skipped, not retried.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// TensionCalculator computes cable tension from a span length and an
// attachment height, both in feet. Failures leave the field blank.
type TensionCalculator interface {
	Tension(ctx context.Context, spanFeet, attachFeet float64) (float64, error)
}

// Stats summarizes one run.
type Stats struct {
	Poles       int
	References  int
	Edges       int
	RowsEmitted int
	FailedEdges int
	QCPairs     int
}

// Result is a completed run: the ordered output rows and run metadata.
type Result struct {
	RunID string
	Rows  []*survey.OutputRow
	Stats Stats
}

// Pipeline is a configured reconciliation engine. A Pipeline is safe to
// reuse across runs; each run is single-threaded.
type Pipeline struct {
	cfg     *config.Config
	matcher *attach.Matcher

	logger   *zerolog.Logger
	progress ProgressFunc
	manual   []route.ManualRoute
	qcSheet  *qc.Sheet
	geocoder Geocoder
	tension  TensionCalculator
}

// New validates the configuration and builds a pipeline.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:     cfg,
		matcher: attach.NewMatcher(cfg),
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Run executes the pipeline over loaded survey data. It returns ErrCanceled
// when the context is done or the progress callback declines to continue; no
// partial result is returned. Fatal errors are NoValidNetworkError and
// ManualRouteError; everything else degrades per row.
func (p *Pipeline) Run(ctx context.Context, data *survey.Data) (*Result, error) {
	if data == nil {
		return nil, &errors.ValidationError{Field: "data", Message: "survey data is required"}
	}

	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)
	log := p.logger.With().Str("run_id", runID).Logger()

	if err := p.checkpoint(ctx, StageFilter, 10, "filtering nodes"); err != nil {
		return nil, err
	}

	opts := route.Options{
		Ignore: p.cfg.IgnoreSCIDKeywords,
		Manual: p.manual,
	}
	if p.qcSheet.Active() {
		for _, pair := range p.qcSheet.Pairs() {
			opts.QC = append(opts.QC, route.Override{
				FromRaw: pair.FromRaw,
				ToRaw:   pair.ToRaw,
				From:    pair.From,
				To:      pair.To,
			})
		}
	}

	graph, err := route.Build(data.Nodes, data.Edges, opts)
	if err != nil {
		return nil, err
	}

	stats := Stats{Edges: len(graph.Spans), QCPairs: len(opts.QC)}
	for _, n := range graph.NodeBySCID {
		if n.IsPole() {
			stats.Poles++
		} else {
			stats.References++
		}
	}
	log.Info().Int("poles", stats.Poles).Int("references", stats.References).
		Int("spans", len(graph.Spans)).Msg("route network assembled")

	if err := p.checkpoint(ctx, StageRoutes, 40, fmt.Sprintf("%d spans routed", len(graph.Spans))); err != nil {
		return nil, err
	}

	resolver := section.NewResolver(data.Sections, graph.Edges)
	qcSpans := p.qcSpanIndex()

	rows := make([]*survey.OutputRow, 0, len(graph.Spans))
	for _, span := range graph.Spans {
		row, ok := p.resolveSpan(ctx, span, data, resolver, qcSpans, &log)
		if !ok {
			stats.FailedEdges++
		}
		rows = append(rows, row)
	}

	if err := p.checkpoint(ctx, StageResolve, 75, fmt.Sprintf("%d rows resolved", len(rows))); err != nil {
		return nil, err
	}

	// QC order is authoritative; automatic and manual routing were already
	// emitted in their final order by the graph builder.
	if err := p.checkpoint(ctx, StageReconcile, 90, "reconciling"); err != nil {
		return nil, err
	}

	stats.RowsEmitted = len(rows)
	log.Info().Int("rows", stats.RowsEmitted).Int("failed_edges", stats.FailedEdges).
		Msg("run complete")

	if err := p.checkpoint(ctx, StageDone, 100, "done"); err != nil {
		return nil, err
	}
	return &Result{RunID: runID, Rows: rows, Stats: stats}, nil
}

func (p *Pipeline) checkpoint(ctx context.Context, stage Stage, percent int, msg string) error {
	select {
	case <-ctx.Done():
		return errors.ErrCanceled
	default:
	}
	if p.progress != nil && !p.progress(stage, percent, msg) {
		return errors.ErrCanceled
	}
	return nil
}

// qcSpanIndex maps normalized QC pairs to their QC-supplied span lengths.
func (p *Pipeline) qcSpanIndex() map[string]string {
	if !p.qcSheet.Active() {
		return nil
	}
	idx := make(map[string]string)
	for _, pair := range p.qcSheet.Pairs() {
		if v := pair.SpanLength(); v != "" {
			idx[qcPairKey(pair.From, pair.To)] = v
		}
	}
	return idx
}

func qcPairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

// resolveSpan derives one output row. No failure here may abort the run; a
// panic is recovered and the row is returned with whatever fields were
// already filled.
func (p *Pipeline) resolveSpan(ctx context.Context, span *route.Span, data *survey.Data,
	resolver *section.Resolver, qcSpans map[string]string, log *zerolog.Logger) (row *survey.OutputRow, ok bool) {

	row = survey.NewOutputRow(span.DisplayFrom, span.DisplayTo)
	row.Terminus = span.Terminus
	ok = true

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("pole", span.DisplayFrom).Str("to_pole", span.DisplayTo).
				Any("panic", r).Msg("span resolution failed")
			ok = false
		}
	}()

	row.SpanLength = p.spanLength(span, qcSpans)

	node := span.FromNode
	if node != nil {
		row.Address = p.address(ctx, node)
		row.PoleHeightClass = node.HeightClass()
		row.Notes = node.Notes()
		row.ExistingRisers = p.countRisers(node)
		if node.Coord != nil {
			row.Latitude = node.Latitude()
			row.Longitude = node.Longitude()
			row.HasCoords = true
		}
		if guys := survey.ExtractGuyInfo(node.Notes()); !guys.Empty() {
			row.GuyLead = guys.LeadList()
			row.GuyDirection = guys.DirectionList()
			row.GuySize = guys.SizeList()
		}
	}
	if span.Terminus {
		return row, ok
	}

	toReference := span.ToNode != nil && span.ToNode.IsReference()

	res := p.matcher.Match(data.Attachments[span.From])
	row.PowerHeight = res.Power
	row.StreetlightHeight = res.Streetlight
	row.StreetlightBracket = res.StreetlightBracket
	row.Comm = res.Comm
	row.AllCommHeights = res.AllComm
	row.CommCount = res.CommCount
	// provider columns describe the pole's own attachments, which a
	// pole-to-reference row does not report
	if !toReference {
		for name, ph := range res.Providers {
			row.SetProvider(name, ph.Display)
		}
	}

	var nodeID string
	if node != nil {
		nodeID = node.ID
	}
	if sec := resolver.Resolve(span.ConnectionID, nodeID); sec != nil {
		p.resolveMidspans(row, sec, toReference)
	}

	p.calculateTension(ctx, row, span, res, log)
	return row, ok
}

// spanLength formats the surveyed span, QC-merged when QC supplies a value,
// as rounded whole feet with a trailing '.
func (p *Pipeline) spanLength(span *route.Span, qcSpans map[string]string) string {
	raw := span.SpanDistance
	if qcSpans != nil {
		if qcVal, found := qcSpans[qcPairKey(span.From, span.To)]; found {
			raw = qc.MergeSpan(raw, qcVal, p.cfg.SpanTolerance)
		}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(raw, "'"), 64)
	if err != nil {
		return raw
	}
	return fmt.Sprintf("%.0f'", f)
}

func (p *Pipeline) address(ctx context.Context, node *survey.Node) string {
	if node.Address != "" || p.geocoder == nil || node.Coord == nil {
		return node.Address
	}
	addr, err := p.geocoder.Reverse(ctx, node.Latitude(), node.Longitude())
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("scid", node.SCID).Msg("geocode lookup failed")
		return ""
	}
	return addr
}

// countRisers counts riser attachments on the pole's own POA pairs,
// excluding the primary provider's proposed riser.
func (p *Pipeline) countRisers(node *survey.Node) string {
	count := 0
	for _, pair := range node.Owners {
		if !strings.Contains(strings.ToLower(pair.Owner), "riser") {
			continue
		}
		if name, matched := p.matcher.ProviderFor(pair.Owner); matched && name == p.cfg.PrimaryProvider {
			continue
		}
		count++
	}
	return strconv.Itoa(count)
}

type midspanEntry struct {
	feet    float64
	display string
}

// resolveMidspans fills the midspan columns from a section record's
// owner/height pairs.
func (p *Pipeline) resolveMidspans(row *survey.OutputRow, sec *survey.SectionRecord, toReference bool) {
	var powerLow midspanEntry
	havePower := false
	var comm []midspanEntry

	for _, pair := range sec.Pairs {
		h, err := heights.Parse(pair.Height)
		if err != nil {
			continue
		}
		entry := midspanEntry{feet: h.Feet, display: h.Display}

		name, isProvider := p.matcher.ProviderFor(pair.Owner)
		if isProvider {
			if !toReference {
				row.SetProviderMidspan(name, entry.display)
			}
			comm = append(comm, entry)
		} else if p.matcher.IsComm(pair.Owner) {
			comm = append(comm, entry)
		}

		if p.matcher.IsPower(pair.Owner) {
			if !havePower || entry.feet < powerLow.feet {
				powerLow, havePower = entry, true
			}
		}
	}

	if havePower {
		row.PowerMidspan = powerLow.display
	}
	sort.SliceStable(comm, func(i, j int) bool { return comm[i].feet > comm[j].feet })
	for i := 0; i < len(comm) && i < len(row.CommMidspan); i++ {
		row.CommMidspan[i] = comm[i].display
	}
}

// calculateTension fills the tension column when a calculator is configured
// and both inputs are available. The primary provider's lowest attachment is
// the height input.
func (p *Pipeline) calculateTension(ctx context.Context, row *survey.OutputRow, span *route.Span,
	res attach.Result, log *zerolog.Logger) {

	if p.tension == nil {
		return
	}
	spanFeet, err := strconv.ParseFloat(strings.TrimSpace(span.SpanDistance), 64)
	if err != nil {
		return
	}
	ph, found := res.Providers[p.cfg.PrimaryProvider]
	if !found {
		return
	}
	t, err := p.tension.Tension(ctx, spanFeet, ph.MinFeet)
	if err != nil {
		log.Debug().Err(err).Str("pole", span.DisplayFrom).Msg("tension calculation failed")
		return
	}
	row.Tension = strconv.FormatFloat(t, 'f', 2, 64)
}
