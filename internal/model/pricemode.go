package model

// PriceMode selects which market statistic becomes the item's market price.
type PriceMode struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Price mode indexes. These are the persisted configuration values.
const (
	AveragePrice        = 0
	CurrentAveragePrice = 1
	MinimumPrice        = 2
	MaximumPrice        = 3
	CurrentMinimumPrice = 4
)

// PriceModes is an immutable, ordered table of price modes.
type PriceModes struct {
	modes []PriceMode
}

// NewPriceModes builds the price mode table. Build it once at startup and
// share the result.
func NewPriceModes() *PriceModes {
	return &PriceModes{modes: []PriceMode{
		{AveragePrice, "Historical Average", "Use average price from recent sale history."},
		{CurrentAveragePrice, "Current Average", "Use average price from current listings."},
		{MinimumPrice, "Historical Minimum", "Use minimum price from recent sale history."},
		{MaximumPrice, "Historical Maximum", "Use maximum price from recent sale history."},
		{CurrentMinimumPrice, "Current Minimum", "Use lowest price from current listings."},
	}}
}

// ByIndex returns the mode with the given index.
func (p *PriceModes) ByIndex(index int) (PriceMode, bool) {
	for _, m := range p.modes {
		if m.Index == index {
			return m, true
		}
	}
	return PriceMode{}, false
}

// All returns a copy of the table in index order.
func (p *PriceModes) All() []PriceMode {
	out := make([]PriceMode, len(p.modes))
	copy(out, p.modes)
	return out
}

// Names returns the display names in index order.
func (p *PriceModes) Names() []string {
	names := make([]string, len(p.modes))
	for i, m := range p.modes {
		names[i] = m.Name
	}
	return names
}

func (m PriceMode) String() string {
	return m.Name
}
