// Package attach classifies a pole's attachment survey records into power,
// telecom-provider, generic-communication, and streetlight heights.
// Matching is keyword-driven from configuration: each provider is one rule
// in a strategy table, evaluated uniformly.
package attach

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spanline/makeready/pkg/config"
	"github.com/spanline/makeready/pkg/heights"
	"github.com/spanline/makeready/pkg/survey"
)

// commSlots is the number of numbered communication output columns.
const commSlots = 4

// commDedupeTolerance treats heights closer than this, in feet, as the same
// physical attachment.
const commDedupeTolerance = 0.01

// measuredRe matches the measured descriptions that identify communication
// attachments.
var measuredRe = regexp.MustCompile(`(?i)\b(catv com|telco com|fiber optic com|insulator|power guy)\b`)

// powerGuyRe picks out the guy records that need the stricter company-column
// check.
var powerGuyRe = regexp.MustCompile(`(?i)\bpower guy\b`)

// providerRule is one entry in the matcher's strategy table.
type providerRule struct {
	name      string
	companyRe *regexp.Regexp
}

// Matcher holds the compiled keyword rules for one configuration.
type Matcher struct {
	powerCompanyRe *regexp.Regexp
	powerKeywordRe *regexp.Regexp
	commKeywordRe  *regexp.Regexp
	providers      []providerRule
}

// NewMatcher compiles the configuration's keyword tables.
func NewMatcher(cfg *config.Config) *Matcher {
	m := &Matcher{
		powerCompanyRe: wordRegexp([]string{cfg.PowerCompany}),
		powerKeywordRe: wordRegexp(cfg.PowerKeywords),
		commKeywordRe:  wordRegexp(cfg.CommKeywords),
	}
	for _, p := range cfg.Providers {
		keywords := append([]string{}, p.Keywords...)
		if !containsFold(keywords, p.Name) {
			keywords = append(keywords, p.Name)
		}
		m.providers = append(m.providers, providerRule{
			name:      p.Name,
			companyRe: wordRegexp(keywords),
		})
	}
	return m
}

// wordRegexp builds a case-insensitive whole-word alternation. Word
// boundaries keep "AT&T" from matching inside "NATIONAL".
func wordRegexp(keywords []string) *regexp.Regexp {
	parts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			parts = append(parts, regexp.QuoteMeta(strings.ToLower(k)))
		}
	}
	if len(parts) == 0 {
		return regexp.MustCompile(`\x00^`) // matches nothing
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// ProviderHeights is one provider's matched attachment set.
type ProviderHeights struct {
	// Display joins all matched heights, highest first.
	Display string
	// MinFeet is the lowest matched height, kept for power tie-breaking.
	MinFeet float64
}

// Result is the classified view of one pole's attachment records.
type Result struct {
	Power     string
	PowerFeet float64
	HasPower  bool

	Providers map[string]ProviderHeights

	Comm      [commSlots]string
	AllComm   string
	CommCount string

	Streetlight        string
	StreetlightBracket string
}

type commEntry struct {
	feet     float64
	display  string
	company  string
	measured string
}

// Match classifies a pole's attachment records. Records whose height cannot
// be parsed are skipped.
func (m *Matcher) Match(records []survey.AttachmentRecord) Result {
	res := Result{Providers: make(map[string]ProviderHeights)}
	if len(records) == 0 {
		return res
	}

	var pool []commEntry
	telecomMax := 0.0
	hasTelecom := false

	for _, rule := range m.providers {
		var matched []commEntry
		for _, r := range records {
			if !m.matchProvider(rule, &r) {
				continue
			}
			inches, ok := r.HeightInches()
			if !ok {
				continue
			}
			feet := inches / 12
			matched = append(matched, commEntry{
				feet:     feet,
				display:  heights.Display(feet),
				company:  r.Company,
				measured: r.Measured,
			})
		}
		if len(matched) == 0 {
			continue
		}
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].feet > matched[j].feet })

		displays := make([]string, len(matched))
		min := matched[0].feet
		for i, e := range matched {
			displays[i] = e.display
			if e.feet < min {
				min = e.feet
			}
			if !hasTelecom || e.feet > telecomMax {
				telecomMax = e.feet
				hasTelecom = true
			}
		}
		res.Providers[rule.name] = ProviderHeights{
			Display: strings.Join(displays, ", "),
			MinFeet: min,
		}
		pool = appendUnique(pool, matched...)
	}

	// generic communication rows join the pool regardless of provider match
	for _, r := range records {
		if !m.commKeywordRe.MatchString(r.Measured) && !m.commKeywordRe.MatchString(r.Company) {
			continue
		}
		inches, ok := r.HeightInches()
		if !ok {
			continue
		}
		feet := inches / 12
		pool = appendUnique(pool, commEntry{
			feet:     feet,
			display:  heights.Display(feet),
			company:  r.Company,
			measured: r.Measured,
		})
	}

	m.assignComm(&res, pool)
	m.selectPower(&res, records, telecomMax, hasTelecom)
	m.selectStreetlights(&res, records)
	return res
}

// matchProvider applies one strategy-table rule to one record. Guy records
// demand the company keyword in the company column; anonymous guy rows must
// not attribute to a provider by measured text alone.
func (m *Matcher) matchProvider(rule providerRule, r *survey.AttachmentRecord) bool {
	if powerGuyRe.MatchString(r.Measured) {
		return rule.companyRe.MatchString(r.Company)
	}
	return rule.companyRe.MatchString(r.Company) && measuredRe.MatchString(r.Measured)
}

// appendUnique adds entries whose height is not already represented within
// the dedupe tolerance.
func appendUnique(pool []commEntry, entries ...commEntry) []commEntry {
	for _, e := range entries {
		dup := false
		for _, p := range pool {
			if diff := e.feet - p.feet; diff < commDedupeTolerance && diff > -commDedupeTolerance {
				dup = true
				break
			}
		}
		if !dup {
			pool = append(pool, e)
		}
	}
	return pool
}

func (m *Matcher) assignComm(res *Result, pool []commEntry) {
	if len(pool) == 0 {
		return
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].feet > pool[j].feet })

	for i := 0; i < len(pool) && i < commSlots; i++ {
		res.Comm[i] = pool[i].display
	}

	summary := make([]string, len(pool))
	for i, e := range pool {
		summary[i] = fmt.Sprintf("%s (%s - %s)", e.display, e.company, e.measured)
	}
	res.AllComm = strings.Join(summary, "; ")
	res.CommCount = fmt.Sprintf("%d", len(pool))
}

// selectPower picks the power conductor height. A power measurement below
// every communication attachment is usually other equipment, so the lowest
// candidate at or above the telecom maximum wins; with no such candidate the
// absolute lowest is kept.
func (m *Matcher) selectPower(res *Result, records []survey.AttachmentRecord, telecomMax float64, hasTelecom bool) {
	type candidate struct {
		feet    float64
		display string
	}
	var candidates []candidate
	for _, r := range records {
		if !m.powerCompanyRe.MatchString(r.Company) || !m.powerKeywordRe.MatchString(r.Measured) {
			continue
		}
		inches, ok := r.HeightInches()
		if !ok {
			continue
		}
		feet := inches / 12
		candidates = append(candidates, candidate{feet: feet, display: heights.Display(feet)})
	}
	if len(candidates) == 0 {
		return
	}

	threshold := 0.0
	if hasTelecom {
		threshold = telecomMax
	}
	best := -1
	for i, c := range candidates {
		if c.feet < threshold {
			continue
		}
		if best < 0 || c.feet < candidates[best].feet {
			best = i
		}
	}
	if best < 0 {
		for i, c := range candidates {
			if best < 0 || c.feet < candidates[best].feet {
				best = i
			}
		}
	}
	res.Power = candidates[best].display
	res.PowerFeet = candidates[best].feet
	res.HasPower = true
}

// selectStreetlights fills both streetlight fields: the power company's
// lowest "street" record, and the lowest "street light" record from any
// company for the bottom-of-bracket column.
func (m *Matcher) selectStreetlights(res *Result, records []survey.AttachmentRecord) {
	lowestStreet, haveStreet := 0.0, false
	lowestBracket, haveBracket := 0.0, false
	for _, r := range records {
		inches, ok := r.HeightInches()
		if !ok {
			continue
		}
		feet := inches / 12
		measured := strings.ToLower(r.Measured)
		if m.powerCompanyRe.MatchString(r.Company) && strings.Contains(measured, "street") {
			if !haveStreet || feet < lowestStreet {
				lowestStreet, haveStreet = feet, true
			}
		}
		if strings.Contains(measured, "street light") {
			if !haveBracket || feet < lowestBracket {
				lowestBracket, haveBracket = feet, true
			}
		}
	}
	if haveStreet {
		res.Streetlight = heights.Display(lowestStreet)
	}
	if haveBracket {
		res.StreetlightBracket = heights.Display(lowestBracket)
	}
}

// ProviderFor matches free-text owner strings, as found in midspan section
// columns, against the provider strategy table. The first configured
// provider whose keywords appear wins.
func (m *Matcher) ProviderFor(owner string) (string, bool) {
	for _, rule := range m.providers {
		if rule.companyRe.MatchString(owner) {
			return rule.name, true
		}
	}
	return "", false
}

// IsPower reports whether an owner string names an electric facility.
func (m *Matcher) IsPower(owner string) bool {
	return m.powerKeywordRe.MatchString(owner)
}

// IsComm reports whether an owner string names a communication attachment.
func (m *Matcher) IsComm(owner string) bool {
	return m.commKeywordRe.MatchString(owner)
}
