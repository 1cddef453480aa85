package filter

import (
	"strings"
)

// Params are unparsed filter values as they arrive from flags or query
// strings.
type Params struct {
	Source      string   `form:"source"`
	Markets     []string `form:"market"`
	Zone        string   `form:"zone"`
	Year        string   `form:"year"`
	ClosingType string   `form:"closing_type"`
	BrokerName  string   `form:"broker"`
}

// Criteria parses p. Market values may be repeated or comma separated;
// "all" clears a filter.
func (p Params) Criteria() (Criteria, error) {
	var c Criteria
	var err error

	if c.Source, err = ParseSourceFilter(p.Source); err != nil {
		return Criteria{}, err
	}
	if c.Year, err = ParseYear(p.Year); err != nil {
		return Criteria{}, err
	}
	if c.ClosingType, err = ParseClosingType(p.ClosingType); err != nil {
		return Criteria{}, err
	}
	if zone := strings.TrimSpace(p.Zone); !strings.EqualFold(zone, "all") {
		c.Zone = zone
	}
	c.BrokerName = strings.TrimSpace(p.BrokerName)

	for _, value := range p.Markets {
		for _, market := range strings.Split(value, ",") {
			market = strings.TrimSpace(market)
			if market == "" || strings.EqualFold(market, "all") {
				continue
			}
			c.Markets = append(c.Markets, market)
		}
	}
	return c, nil
}
