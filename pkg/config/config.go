package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/downfa11-org/snapstore/util"
	"gopkg.in/yaml.v3"
)

// Config carries the settings shared by the snapstore command-line tools.
type Config struct {
	// SnapDir is where snapshot files are created.
	SnapDir  string        `yaml:"snap_dir"`
	LogLevel util.LogLevel `yaml:"log_level"`

	// Prometheus exporter
	EnableExporter bool `yaml:"enable_exporter"`
	ExporterPort   int  `yaml:"exporter_port"`

	// Benchmark knobs
	BenchPages int    `yaml:"bench_pages"`
	BenchSeed  uint64 `yaml:"bench_seed"`
}

// LoadConfig reads flags and, if given, a YAML config file. Explicit flags
// win over file values, which win over defaults.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("snapstore", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config file")
	snapDir := fs.String("snap-dir", "snapshots", "Directory for snapshot files")
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	exporter := fs.Bool("exporter", false, "Enable Prometheus exporter")
	exporterPort := fs.Int("exporter-port", 9100, "Exporter port")
	benchPages := fs.Int("bench-pages", 10000, "Pages per benchmark run")
	benchSeed := fs.Uint64("bench-seed", 1, "Benchmark payload seed")

	if envPath := os.Getenv("SNAPSTORE_CONFIG"); envPath != "" && *configPath == "" {
		*configPath = envPath
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg.SnapDir = *snapDir
	cfg.LogLevel = util.ParseLevel(*logLevel)
	cfg.EnableExporter = *exporter
	cfg.ExporterPort = *exporterPort
	cfg.BenchPages = *benchPages
	cfg.BenchSeed = *benchSeed

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read config %s: %w", *configPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, nil, fmt.Errorf("parse config %s: %w", *configPath, err)
		}
		// File values lose to flags the user actually passed.
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "snap-dir":
				cfg.SnapDir = *snapDir
			case "log-level":
				cfg.LogLevel = util.ParseLevel(*logLevel)
			case "exporter":
				cfg.EnableExporter = *exporter
			case "exporter-port":
				cfg.ExporterPort = *exporterPort
			case "bench-pages":
				cfg.BenchPages = *benchPages
			case "bench-seed":
				cfg.BenchSeed = *benchSeed
			}
		})
	}

	cfg.Normalize()
	util.SetLevel(cfg.LogLevel)
	return cfg, fs.Args(), nil
}

// Normalize replaces out-of-range values with usable defaults.
func (cfg *Config) Normalize() {
	if strings.TrimSpace(cfg.SnapDir) == "" {
		cfg.SnapDir = "snapshots"
	}
	if cfg.ExporterPort <= 0 || cfg.ExporterPort > 65535 {
		cfg.ExporterPort = 9100
	}
	if cfg.BenchPages <= 0 {
		cfg.BenchPages = 10000
	}
	if cfg.BenchSeed == 0 {
		cfg.BenchSeed = 1
	}
}
