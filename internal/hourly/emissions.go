package hourly

import "strings"

// Factor pairs a fuel-name key with an emission factor in tons CO2 per
// MWh of that fuel's output.
type Factor struct {
	Fuel   string
	Factor float64
}

// Match is one resolved (factor key, fuel column) pair.
type Match struct {
	Key    string
	Factor float64
	Column string
}

// ResolveFactors resolves the ordered factor table against the observed
// fuel columns once, by case-insensitive substring match of the key in
// the column name. A column matching several keys yields several
// matches; each contributes to the Emissions total separately, so "Gas"
// and "Gas-CC" keys both hitting a "Gas-CC" column double-count it. That
// reproduces the historical behavior and is deliberate; callers wanting
// a clean mapping can inspect the matches before applying them.
func ResolveFactors(fuels []string, factors []Factor) []Match {
	var matches []Match
	for _, f := range factors {
		key := strings.ToLower(f.Fuel)
		for _, col := range fuels {
			if strings.Contains(strings.ToLower(col), key) {
				matches = append(matches, Match{Key: f.Fuel, Factor: f.Factor, Column: col})
			}
		}
	}
	return matches
}

// ApplyEmissions computes the Emissions column and per-fuel
// Emissions_<fuel> sub-columns from pre-resolved matches, and
// initializes Price to its zero placeholder. For a column matched by
// several keys the sub-column keeps the last match while the total
// accumulates every match.
func (t *Table) ApplyEmissions(matches []Match) {
	seen := make(map[string]bool)
	t.EmissionCols = t.EmissionCols[:0]
	for _, m := range matches {
		if !seen[m.Column] {
			seen[m.Column] = true
			t.EmissionCols = append(t.EmissionCols, m.Column)
		}
	}

	for i := range t.Rows {
		row := &t.Rows[i]
		row.Emissions = 0
		row.Price = 0
		row.EmissionsByFuel = make(map[string]float64, len(t.EmissionCols))
		for _, m := range matches {
			contribution := row.Fuel[m.Column] * m.Factor
			row.EmissionsByFuel[m.Column] = contribution
			row.Emissions += contribution
		}
	}
}
