package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	ConfigPath  string
	Endpoint    string
	LogLevel    string
	LogFormat   string
	Timeout     time.Duration
	MaxGraphs   int
	ShowVersion bool
	ShowHelp    bool
}

func parseFlags() (*CLIConfig, []string) {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SKOSLENS_CONFIG", ""),
		"Path to configuration file (env: SKOSLENS_CONFIG)")

	flag.StringVar(&cfg.Endpoint, "endpoint",
		getEnv("SKOSLENS_ENDPOINT", ""),
		"Endpoint id/name from config, or a raw SPARQL endpoint URL (env: SKOSLENS_ENDPOINT)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SKOSLENS_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: SKOSLENS_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SKOSLENS_LOG_FORMAT", "text"),
		"Log format: json, text (env: SKOSLENS_LOG_FORMAT)")

	flag.DurationVar(&cfg.Timeout, "timeout",
		getEnvDuration("SKOSLENS_TIMEOUT", 0),
		"Per-attempt query timeout, 0 for config default (env: SKOSLENS_TIMEOUT)")

	flag.IntVar(&cfg.MaxGraphs, "max-graphs",
		getEnvInt("SKOSLENS_MAX_GRAPHS", 0),
		"SKOS graph URI list threshold, 0 for default (env: SKOSLENS_MAX_GRAPHS)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	flag.Usage = printDetailedHelp
	flag.Parse()

	return cfg, flag.Args()
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if cfg.MaxGraphs < 0 {
		return fmt.Errorf("max-graphs cannot be negative")
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - SPARQL endpoint access and capability analysis

Usage: %s [options] <command> [args]

Commands:
  analyze              Probe the endpoint's capabilities (graphs, SKOS, languages)
  query <sparql|->     Execute a SPARQL query ("-" reads the query from stdin)
  test                 Test connectivity and measure response time
  resolve <uri>...     Resolve URIs to prefix:localName pairs

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Credentials are read from the environment at call time and never persisted:
  SKOSLENS_USERNAME / SKOSLENS_PASSWORD   basic auth
  SKOSLENS_TOKEN                          bearer auth
  SKOSLENS_API_KEY                        apiKey auth

Examples:
  # Analyze a public endpoint
  %s --endpoint=https://publications.europa.eu/webapi/rdf/sparql analyze

  # Run a query against a configured endpoint
  %s --config=skoslens.yaml --endpoint=eurovoc query 'SELECT * WHERE { ?s ?p ?o } LIMIT 5'

  # Resolve predicate URIs
  %s resolve http://www.w3.org/2004/02/skos/core#prefLabel

Version: %s
`, os.Args[0], os.Args[0], os.Args[0], Version)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var parsed int
		if _, err := fmt.Sscanf(value, "%d", &parsed); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
