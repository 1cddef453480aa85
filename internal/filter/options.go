package filter

import (
	"slices"
	"sort"
	"strings"

	"github.com/Veraticus/leadflow/internal/model"
	"github.com/Veraticus/leadflow/internal/normalize"
)

// MarketOption is a selectable market with the lead sources seen for it.
type MarketOption struct {
	Name  string         `json:"name"`
	Label string         `json:"label"`
	Types []model.Source `json:"types"`
}

// Options are the filter values present in a record set.
type Options struct {
	Sources []model.Source `json:"sources"`
	Markets []MarketOption `json:"markets"`
	Zones   []string       `json:"zones"`
	Years   []int          `json:"years"`
}

// DiscoverOptions lists the distinct sources, markets, zones and delivery
// years. Sources, markets and zones sort ascending; years newest first.
func DiscoverOptions(records []model.Record) Options {
	sources := make(map[model.Source]struct{})
	markets := make(map[string]map[model.Source]struct{})
	zones := make(map[string]struct{})
	years := make(map[int]struct{})

	for i := range records {
		r := &records[i]
		if r.Source != model.SourceUnknown {
			sources[r.Source] = struct{}{}
		}
		if market := strings.TrimSpace(r.Market); market != "" {
			types, ok := markets[market]
			if !ok {
				types = make(map[model.Source]struct{})
				markets[market] = types
			}
			if r.MarketType != model.SourceUnknown {
				types[r.MarketType] = struct{}{}
			}
		}
		if r.LeadZone != "" {
			zones[r.LeadZone] = struct{}{}
		}
		if t, ok := normalize.ParseDate(r.FirstDeliveryTime); ok {
			years[t.Year()] = struct{}{}
		}
	}

	var opts Options
	for s := range sources {
		opts.Sources = append(opts.Sources, s)
	}
	slices.Sort(opts.Sources)

	for name, types := range markets {
		opt := MarketOption{Name: name}
		for _, s := range model.Sources() {
			if _, ok := types[s]; ok {
				opt.Types = append(opt.Types, s)
			}
		}
		opt.Label = marketLabel(name, types)
		opts.Markets = append(opts.Markets, opt)
	}
	sort.Slice(opts.Markets, func(i, j int) bool {
		return opts.Markets[i].Name < opts.Markets[j].Name
	})

	for z := range zones {
		opts.Zones = append(opts.Zones, z)
	}
	slices.Sort(opts.Zones)

	for y := range years {
		opts.Years = append(opts.Years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(opts.Years)))

	return opts
}

func marketLabel(name string, types map[model.Source]struct{}) string {
	_, opcity := types[model.SourceOpCity]
	_, vip := types[model.SourceMarketVIP]
	switch {
	case opcity && vip:
		return name + " (OpCity & Market VIP)"
	case opcity:
		return name + " (OpCity)"
	case vip:
		return name + " (Market VIP)"
	default:
		return name
	}
}
