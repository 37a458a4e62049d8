// Package analytics is the read side of the dataset: filtered counts, sums,
// group-bys and top-N rankings over the Project-Location-Funding graph.
package analytics

import (
	"sort"
	"strings"
)

// Filter sentinels the dashboard sends for "no restriction". A missing
// value and either sentinel are treated identically.
const (
	SentinelNoFilter = "nessun filtro"
	SentinelAll      = "Tutte"
)

// Filter restricts an aggregation to a slice of the dataset. Zero values
// and the sentinels mean "no restriction on this dimension". Unknown enum
// values are not an error: they simply match nothing.
type Filter struct {
	Region         string
	Macroarea      string
	FundingSource  string
	IsCrossCutting *bool
}

func unrestricted(v string) bool {
	return v == "" || strings.EqualFold(v, SentinelNoFilter) || strings.EqualFold(v, SentinelAll)
}

func (f Filter) region() (string, bool) {
	if unrestricted(f.Region) {
		return "", false
	}
	return f.Region, true
}

func (f Filter) macroarea() (string, bool) {
	if unrestricted(f.Macroarea) {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(f.Macroarea)), true
}

func (f Filter) fundingSource() (string, bool) {
	if unrestricted(f.FundingSource) {
		return "", false
	}
	return f.FundingSource, true
}

// Key is a deterministic cache key fragment for the filter.
func (f Filter) Key() string {
	parts := []string{
		"region=" + f.Region,
		"macroarea=" + strings.ToUpper(f.Macroarea),
		"source=" + f.FundingSource,
	}
	if f.IsCrossCutting != nil {
		if *f.IsCrossCutting {
			parts = append(parts, "crosscutting=true")
		} else {
			parts = append(parts, "crosscutting=false")
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}
