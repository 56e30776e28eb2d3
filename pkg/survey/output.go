package survey

// OutputRow is one line of the make-ready report: one pole/to-pole
// connection with its resolved heights.
type OutputRow struct {
	Pole     string
	ToPole   string // "" marks a route terminus
	Terminus bool

	SpanLength      string // rounded feet with ' suffix
	Address         string
	PoleHeightClass string
	ExistingRisers  string

	GuyLead      string
	GuyDirection string
	GuySize      string

	PowerHeight  string
	PowerMidspan string

	StreetlightHeight  string
	StreetlightBracket string

	// Providers and ProviderMidspans are keyed by provider display name.
	Providers        map[string]string
	ProviderMidspans map[string]string

	// Comm holds the four numbered communication columns, lowest last.
	Comm        [4]string
	CommMidspan [4]string

	AllCommHeights string
	CommCount      string

	Notes     string
	Latitude  float64
	Longitude float64
	HasCoords bool

	Tension string
}

// NewOutputRow returns a row with provider maps allocated.
func NewOutputRow(pole, toPole string) *OutputRow {
	return &OutputRow{
		Pole:             pole,
		ToPole:           toPole,
		Providers:        make(map[string]string),
		ProviderMidspans: make(map[string]string),
	}
}

// Provider returns the recorded height for a provider, or "".
func (r *OutputRow) Provider(name string) string {
	return r.Providers[name]
}

// SetProvider records a provider height unless one is already present.
func (r *OutputRow) SetProvider(name, height string) {
	if r.Providers[name] == "" {
		r.Providers[name] = height
	}
}

// SetProviderMidspan records a provider midspan height unless one is already
// present.
func (r *OutputRow) SetProviderMidspan(name, height string) {
	if r.ProviderMidspans[name] == "" {
		r.ProviderMidspans[name] = height
	}
}
