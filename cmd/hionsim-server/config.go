package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/daniacca/hionsim/internal/hion"
)

// ServerConfig holds the server configuration. Values come from the
// environment first, then CLI flags override them.
type ServerConfig struct {
	Addr        string `env:"HIONSIM_ADDR" envDefault:":8080"`
	CatalogFile string `env:"HIONSIM_CATALOG_FILE"`
	SnapshotDir string `env:"HIONSIM_SNAPSHOT_DIR" envDefault:"./data"`
	LogLevel    string `env:"HIONSIM_LOG_LEVEL" envDefault:"info"`

	Seed int64 `env:"HIONSIM_SEED" envDefault:"42"`

	// Defaults for collision resolution, overridable per request.
	TimeStep   float64 `env:"HIONSIM_DT" envDefault:"0.1"`
	CellVolume float64 `env:"HIONSIM_CELL_VOLUME" envDefault:"5.0"`
	ThreeToOne bool    `env:"HIONSIM_ENABLE_3TO1" envDefault:"true"`
}

// loadServerConfig loads the configuration from environment variables and
// lets CLI flags override individual values.
func loadServerConfig() (ServerConfig, error) {
	cfg, err := env.ParseAs[ServerConfig]()
	if err != nil {
		return ServerConfig{}, err
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address (e.g. :8080, 0.0.0.0:8080)")
	flag.StringVar(&cfg.CatalogFile, "catalog-file", cfg.CatalogFile, "optional path to a JSON species catalog to load at startup")
	flag.StringVar(&cfg.SnapshotDir, "snapshot-dir", cfg.SnapshotDir, "directory where system snapshots are stored")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random generator seed; fixed seeds give reproducible runs")
	flag.Float64Var(&cfg.TimeStep, "dt", cfg.TimeStep, "default time step for collision probabilities (fm/c)")
	flag.Float64Var(&cfg.CellVolume, "cell-volume", cfg.CellVolume, "default interaction cell volume (fm^3)")
	flag.BoolVar(&cfg.ThreeToOne, "enable-3to1", cfg.ThreeToOne, "offer 3-to-1 fusion channels")
	flag.Parse()

	return cfg, nil
}

// loadCatalogFromFile loads and validates a species catalog from a JSON
// file and builds the species table.
func loadCatalogFromFile(path string) (hion.CatalogConfig, *hion.SpeciesTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return hion.CatalogConfig{}, nil, err
	}

	var cfg hion.CatalogConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return hion.CatalogConfig{}, nil, err
	}

	table, err := hion.BuildSpeciesTableFromConfig(cfg)
	if err != nil {
		return hion.CatalogConfig{}, nil, err
	}

	return cfg, table, nil
}
