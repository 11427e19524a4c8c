package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EmissionFactor pairs a fuel-name key with an emission factor in tons
// CO2 per MWh. Keys are matched against observed fuel columns by
// case-insensitive substring, so order matters for the per-fuel columns.
type EmissionFactor struct {
	Fuel   string  `yaml:"fuel"`
	Factor float64 `yaml:"factor"`
}

// DefaultEmissionFactors is the built-in factor table. "Gas-CC" often
// reports as plain "Gas"; "Other" is a conservative estimate.
func DefaultEmissionFactors() []EmissionFactor {
	return []EmissionFactor{
		{Fuel: "Coal", Factor: 1.0},
		{Fuel: "Gas", Factor: 0.43},
		{Fuel: "Gas-CC", Factor: 0.4},
		{Fuel: "Biomass", Factor: 0.0},
		{Fuel: "Wind", Factor: 0.0},
		{Fuel: "Solar", Factor: 0.0},
		{Fuel: "Nuclear", Factor: 0.0},
		{Fuel: "Hydro", Factor: 0.0},
		{Fuel: "Other", Factor: 0.43},
	}
}

// Config defines the pipeline configuration.
type Config struct {
	DataDir         string           `yaml:"data_dir"`
	PriceDir        string           `yaml:"price_dir"`
	OutputFile      string           `yaml:"output_file"`
	ReportName      string           `yaml:"report_name"`
	StartYear       int              `yaml:"start_year"`
	EndYear         int              `yaml:"end_year"`
	ReferenceNode   string           `yaml:"reference_node"`
	Aggregation     string           `yaml:"aggregation"`
	EmissionFactors []EmissionFactor `yaml:"emission_factors"`
	DatabaseURL     string           `yaml:"database_url"`
	DBTable         string           `yaml:"db_table"`
	MetricsTextfile string           `yaml:"metrics_textfile"`
}

// Load loads config from yaml or env. An empty path falls back to the
// GRIDHISTORY_CONFIG env var; with neither set the defaults apply.
func Load(path string) (Config, error) {
	cfg := Config{
		DataDir:       getenvDefault("GRIDHISTORY_DATA_DIR", "data"),
		PriceDir:      getenvDefault("GRIDHISTORY_PRICE_DIR", "temp_prices"),
		OutputFile:    getenvDefault("GRIDHISTORY_OUTPUT", "historical_gen_load_emissions.csv"),
		ReportName:    "intgenbyfuel",
		StartYear:     getenvIntDefault("GRIDHISTORY_START_YEAR", 2020),
		EndYear:       getenvIntDefault("GRIDHISTORY_END_YEAR", 2024),
		ReferenceNode: getenvDefault("GRIDHISTORY_REFERENCE_NODE", "HB_NORTH"),
		Aggregation:   "sum",
		DatabaseURL:   os.Getenv("GRIDHISTORY_DATABASE_URL"),
		DBTable:       "hourly_grid_history",
	}

	if path == "" {
		path = os.Getenv("GRIDHISTORY_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if len(cfg.EmissionFactors) == 0 {
		cfg.EmissionFactors = DefaultEmissionFactors()
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.DataDir == "" {
		return errors.New("config: data dir required")
	}
	if c.OutputFile == "" {
		return errors.New("config: output file required")
	}
	if c.StartYear > c.EndYear {
		return fmt.Errorf("config: start year %d after end year %d", c.StartYear, c.EndYear)
	}
	if c.Aggregation != "sum" && c.Aggregation != "mean" {
		return fmt.Errorf("config: unknown aggregation %q (want sum or mean)", c.Aggregation)
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
