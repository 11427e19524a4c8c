package hourly

import (
	"math"
	"testing"
	"time"
)

func testFactors() []Factor {
	return []Factor{
		{Fuel: "Coal", Factor: 1.0},
		{Fuel: "Gas", Factor: 0.43},
		{Fuel: "Gas-CC", Factor: 0.4},
		{Fuel: "Wind", Factor: 0.0},
	}
}

func TestResolveFactorsSubstringMatch(t *testing.T) {
	matches := ResolveFactors([]string{"Coal", "Gas", "Gas-CC", "Wind"}, testFactors())

	// Key "Gas" hits both Gas and Gas-CC; key "Gas-CC" hits Gas-CC again.
	var gasCCMatches int
	for _, m := range matches {
		if m.Column == "Gas-CC" {
			gasCCMatches++
		}
	}
	if gasCCMatches != 2 {
		t.Fatalf("Gas-CC column matched %d keys, want 2", gasCCMatches)
	}
}

func TestResolveFactorsCaseInsensitive(t *testing.T) {
	matches := ResolveFactors([]string{"coal"}, []Factor{{Fuel: "Coal", Factor: 1.0}})
	if len(matches) != 1 || matches[0].Column != "coal" {
		t.Fatalf("matches = %+v, want one coal match", matches)
	}
}

func oneHourTable(values map[string]float64) Table {
	fuels := make([]string, 0, len(values))
	for f := range values {
		fuels = append(fuels, f)
	}
	return Table{
		Fuels: fuels,
		Rows:  []Row{{Hour: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Fuel: values}},
	}
}

func TestApplyEmissionsCoalContribution(t *testing.T) {
	table := oneHourTable(map[string]float64{"Coal": 100})
	table.ApplyEmissions(ResolveFactors([]string{"Coal"}, testFactors()))

	row := table.Rows[0]
	if row.Emissions != 100 {
		t.Fatalf("Emissions = %v, want 100 (Coal 100 x 1.0)", row.Emissions)
	}
	if row.EmissionsByFuel["Coal"] != 100 {
		t.Fatalf("Emissions_Coal = %v, want 100", row.EmissionsByFuel["Coal"])
	}
}

func TestApplyEmissionsDoubleCountPreserved(t *testing.T) {
	// Both the Gas and Gas-CC columns substring-match the "Gas" key, and
	// Gas-CC additionally matches its own key. The total deliberately
	// counts every match, reproducing the historical behavior.
	table := oneHourTable(map[string]float64{"Gas": 100, "Gas-CC": 100})
	table.ApplyEmissions(ResolveFactors([]string{"Gas", "Gas-CC"}, testFactors()))

	row := table.Rows[0]
	want := 100*0.43 + 100*0.43 + 100*0.4
	if math.Abs(row.Emissions-want) > 1e-9 {
		t.Fatalf("Emissions = %v, want %v (double-counted Gas-CC)", row.Emissions, want)
	}
	// The sub-column keeps the last matching key's contribution.
	if got := row.EmissionsByFuel["Gas-CC"]; math.Abs(got-40) > 1e-9 {
		t.Fatalf("Emissions_Gas-CC = %v, want 40", got)
	}
}

func TestApplyEmissionsInitializesPricePlaceholder(t *testing.T) {
	table := oneHourTable(map[string]float64{"Wind": 50})
	table.Rows[0].Price = 99
	table.ApplyEmissions(ResolveFactors([]string{"Wind"}, testFactors()))
	if table.Rows[0].Price != 0 {
		t.Fatalf("Price placeholder = %v, want 0", table.Rows[0].Price)
	}
}

func TestApplyEmissionsColumnOrderDeterministic(t *testing.T) {
	fuels := []string{"Coal", "Gas", "Gas-CC", "Wind"}
	first := oneHourTable(map[string]float64{"Coal": 1, "Gas": 1, "Gas-CC": 1, "Wind": 1})
	second := oneHourTable(map[string]float64{"Coal": 1, "Gas": 1, "Gas-CC": 1, "Wind": 1})
	first.ApplyEmissions(ResolveFactors(fuels, testFactors()))
	second.ApplyEmissions(ResolveFactors(fuels, testFactors()))

	if len(first.EmissionCols) != len(second.EmissionCols) {
		t.Fatal("emission column count differs between identical runs")
	}
	for i := range first.EmissionCols {
		if first.EmissionCols[i] != second.EmissionCols[i] {
			t.Fatalf("emission column order differs: %v vs %v", first.EmissionCols, second.EmissionCols)
		}
	}
}
