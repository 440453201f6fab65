// Package main implements the skoslens command line tool: SPARQL endpoint
// access, capability analysis, and URI prefix resolution.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cognizone/skoslens/config"
	"github.com/cognizone/skoslens/detect"
	"github.com/cognizone/skoslens/pkg/kvstore"
	"github.com/cognizone/skoslens/prefix"
	"github.com/cognizone/skoslens/sanitize"
	"github.com/cognizone/skoslens/sparql"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "skoslens"
)

func main() {
	if err := run(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, args := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp || len(args) == 0 {
		printDetailedHelp()
		if len(args) == 0 && !cliCfg.ShowHelp {
			return fmt.Errorf("no command given")
		}
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg := config.Default()
	if cliCfg.ConfigPath != "" {
		loaded, err := config.Load(cliCfg.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(cfg, cliCfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	command, rest := args[0], args[1:]
	switch command {
	case "analyze":
		return app.analyze(ctx)
	case "query":
		return app.query(ctx, rest)
	case "test":
		return app.test(ctx)
	case "resolve":
		return app.resolve(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// app wires the access layer together for one CLI invocation.
type app struct {
	cfg      *config.Config
	cliCfg   *CLIConfig
	logger   *slog.Logger
	client   *sparql.Client
	detector *detect.Detector
	resolver *prefix.Resolver
	store    kvstore.Store
}

func newApp(cfg *config.Config, cliCfg *CLIConfig, logger *slog.Logger) (*app, error) {
	reg := prometheus.NewRegistry()

	queryOpts := cfg.QueryOptions()
	if cliCfg.Timeout > 0 {
		queryOpts.Timeout = cliCfg.Timeout
	}

	client, err := sparql.NewClient(
		sparql.WithLogger(logger),
		sparql.WithMetrics(reg),
		sparql.WithDefaults(queryOpts),
	)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	detectorOpts := []detect.Option{
		detect.WithLogger(logger),
		detect.WithQueryOptions(queryOpts),
	}
	if cliCfg.MaxGraphs > 0 {
		detectorOpts = append(detectorOpts, detect.WithMaxGraphs(cliCfg.MaxGraphs))
	}
	detector, err := detect.New(client, detectorOpts...)
	if err != nil {
		return nil, fmt.Errorf("create detector: %w", err)
	}

	store, err := openPrefixStore(cfg.DataDir, reg)
	if err != nil {
		return nil, fmt.Errorf("open prefix cache: %w", err)
	}

	lookupOpts := []prefix.LookupOption{}
	if cfg.LookupURL != "" {
		lookupOpts = append(lookupOpts, prefix.WithLookupURL(cfg.LookupURL))
	}
	resolver, err := prefix.NewResolver(store,
		prefix.WithLogger(logger),
		prefix.WithLookup(prefix.NewHTTPLookup(lookupOpts...)),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create resolver: %w", err)
	}

	return &app{
		cfg:      cfg,
		cliCfg:   cliCfg,
		logger:   logger,
		client:   client,
		detector: detector,
		resolver: resolver,
		store:    store,
	}, nil
}

func openPrefixStore(dataDir string, reg prometheus.Registerer) (kvstore.Store, error) {
	if dataDir == "" || dataDir == ":memory:" {
		mem, err := kvstore.NewMemory(kvstore.WithMetrics(reg, "prefix"))
		if err != nil {
			return nil, err
		}
		return mem, nil
	}
	db, err := kvstore.OpenSQLite(dataDir, kvstore.WithMetrics(reg, "prefix"))
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing prefix cache failed", "error", err)
	}
}

// endpoint resolves the --endpoint flag: a configured endpoint id or name,
// or a raw URL. Credentials come from the environment at call time.
func (a *app) endpoint() (*sparql.Endpoint, error) {
	ref := a.cliCfg.Endpoint
	if ref == "" {
		if len(a.cfg.Endpoints) == 1 {
			ep := a.cfg.Endpoints[0].Runtime()
			attachCredentials(ep)
			return ep, nil
		}
		return nil, fmt.Errorf("no endpoint selected, use --endpoint")
	}

	if ep, ok := a.cfg.Endpoint(ref); ok {
		attachCredentials(ep)
		a.warnOnSecurity(ep.URL)
		return ep, nil
	}

	if !sanitize.IsValidEndpointURL(ref) {
		return nil, fmt.Errorf("unknown endpoint %q (not configured, not a valid URL)", ref)
	}
	a.warnOnSecurity(ref)
	ep := &sparql.Endpoint{ID: ref, URL: ref}
	attachCredentials(ep)
	return ep, nil
}

func (a *app) warnOnSecurity(rawURL string) {
	check := sanitize.CheckEndpointSecurity(rawURL)
	if check.Warning != "" {
		a.logger.Warn("endpoint security", "url", rawURL, "warning", check.Warning)
	}
	trust := sanitize.AssessEndpointTrust(rawURL, append(sanitize.DefaultTrustedHosts(), a.cfg.TrustedHosts...))
	if trust == sanitize.TrustWarning {
		a.logger.Warn("endpoint is not trusted", "url", rawURL)
	}
}

// attachCredentials fills auth secrets from the environment. Configuration
// files carry only the auth kind; secrets stay out of durable storage.
func attachCredentials(ep *sparql.Endpoint) {
	switch ep.Auth.Kind {
	case sparql.AuthBasic:
		ep.Auth.Username = os.Getenv("SKOSLENS_USERNAME")
		ep.Auth.Password = os.Getenv("SKOSLENS_PASSWORD")
	case sparql.AuthBearer:
		ep.Auth.Token = os.Getenv("SKOSLENS_TOKEN")
	case sparql.AuthAPIKey:
		ep.Auth.APIKey = os.Getenv("SKOSLENS_API_KEY")
	}
}

func (a *app) analyze(ctx context.Context) error {
	ep, err := a.endpoint()
	if err != nil {
		return err
	}

	a.logger.Info("analyzing endpoint", "endpoint", ep.ID)
	analysis := a.detector.Analyze(ctx, ep)
	return printJSON(analysis)
}

func (a *app) query(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("query takes exactly one argument (a SPARQL query, or - for stdin)")
	}

	queryText := args[0]
	if queryText == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read query from stdin: %w", err)
		}
		queryText = string(data)
	}
	if strings.TrimSpace(queryText) == "" {
		return fmt.Errorf("query is empty")
	}

	ep, err := a.endpoint()
	if err != nil {
		return err
	}

	result, err := a.client.Execute(ctx, ep, queryText, nil)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *app) test(ctx context.Context) error {
	ep, err := a.endpoint()
	if err != nil {
		return err
	}

	got := a.client.TestConnection(ctx, ep)
	out := map[string]any{
		"success":      got.Success,
		"responseTime": got.ResponseTime.String(),
	}
	if got.Error != nil {
		out["error"] = got.Error.Error()
	}
	if err := printJSON(out); err != nil {
		return err
	}
	if !got.Success {
		return fmt.Errorf("connection test failed")
	}
	return nil
}

func (a *app) resolve(ctx context.Context, uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("resolve takes one or more URIs")
	}

	resolved := a.resolver.ResolveURIs(ctx, uris)
	out := make(map[string]string, len(resolved))
	for uri, entry := range resolved {
		out[uri] = prefix.FormatQualifiedName(entry)
	}
	return printJSON(out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
