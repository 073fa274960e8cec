package resolve

import (
	"sort"

	"catalog-sync/core/models"
)

// Stats summarizes a set of matches.
type Stats struct {
	Total      int `json:"total"`
	Retail     int `json:"retail_matches"`
	Ecom       int `json:"ecom_matches"`
	Both       int `json:"both_matches"`
	RetailOnly int `json:"retail_only"`
	EcomOnly   int `json:"ecom_only"`
	None       int `json:"no_matches"`
}

// ComputeStats counts matches per backend combination.
func ComputeStats(matches map[string]models.Match) Stats {
	var s Stats
	for _, m := range matches {
		s.Total++
		r, e := m.Has(models.BackendRetail), m.Has(models.BackendEcom)
		switch {
		case r && e:
			s.Both++
		case r:
			s.RetailOnly++
		case e:
			s.EcomOnly++
		default:
			s.None++
		}
	}
	s.Retail = s.RetailOnly + s.Both
	s.Ecom = s.EcomOnly + s.Both
	return s
}

// Unmatched returns the sorted keys lacking any required backend.
func Unmatched(matches map[string]models.Match, requireRetail, requireEcom bool) []string {
	var keys []string
	for key, m := range matches {
		if (requireRetail && !m.Has(models.BackendRetail)) || (requireEcom && !m.Has(models.BackendEcom)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Filter keeps the matches that have every required backend.
func Filter(matches map[string]models.Match, requireRetail, requireEcom bool) map[string]models.Match {
	out := make(map[string]models.Match, len(matches))
	for key, m := range matches {
		if requireRetail && !m.Has(models.BackendRetail) {
			continue
		}
		if requireEcom && !m.Has(models.BackendEcom) {
			continue
		}
		out[key] = m
	}
	return out
}
