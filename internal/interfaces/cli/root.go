// Package cli implements pricectl, the operator CLI for the pricing service.
// Offline commands price and validate rule documents locally; the rest go
// through the HTTP API via pkg/client.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Pricing/internal/config"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Pricing/pkg/client"
	"github.com/turtacn/KeyIP-Pricing/pkg/errors"
)

// Set with -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// APIKeyEnv is read when --api-key is not given.
const APIKeyEnv = "KEYPRICE_API_KEY"

const defaultServerAddr = "http://localhost:8080"

type cliContextKey struct{}

// RootOptions are the persistent flags shared by every command.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
	ServerAddr   string
	APIKey       string
}

// CLIContext is built once per invocation and stored on the command context.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Client       *client.Client
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pricectl",
		Short: "pricectl prices IP service selections and manages pricing rules",
		Long: `pricectl evaluates trademark, patentability search, drafting, filing and FER
selections against pricing rule documents, and manages the rule sets stored
by the pricing API server.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := setup(opts)
			if err != nil {
				return err
			}
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			cmd.SetContext(context.WithValue(parent, cliContextKey{}, cliCtx))
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: ./keyprice.yaml, ~/.keyprice/config.yaml, /etc/keyprice/config.yaml)")
	f.StringVar(&opts.LogLevel, "log-level", "warn", "log level: debug, info, warn, error")
	f.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format: text, json, table")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	f.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "timeout for remote operations")
	f.StringVar(&opts.ServerAddr, "server", "", "pricing API address (default: from config, else "+defaultServerAddr+")")
	f.StringVar(&opts.APIKey, "api-key", "", "API key for rule writes (default: $"+APIKeyEnv+")")

	cmd.AddCommand(NewQuoteCmd(), NewRulesCmd(), NewMigrateCmd(), NewVersionCmd())
	return cmd
}

// setup validates the global flags and builds config, logger and client.  A
// client that cannot be built only matters to remote commands, so it is
// logged rather than returned.
func setup(opts *RootOptions) (*CLIContext, error) {
	format := strings.ToLower(opts.OutputFormat)
	if format != "text" && format != "json" && format != "table" {
		return nil, errors.InvalidParam("unsupported output format").WithDetail(opts.OutputFormat)
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("config initialization failed: %w", err)
	}

	level := opts.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	// stdout is reserved for results
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, fmt.Errorf("logger initialization failed: %w", err)
	}

	c, err := initClient(cfg, opts)
	if err != nil {
		logger.Warn("pricing API client unavailable", logging.Err(err))
	}

	return &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Client:       c,
		OutputFormat: format,
		Verbose:      opts.Verbose,
		Timeout:      opts.Timeout,
	}, nil
}

func configSearchPaths() []string {
	paths := []string{"./keyprice.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".keyprice", "config.yaml"))
	}
	return append(paths, "/etc/keyprice/config.yaml")
}

// initConfig loads .env, then --config or the first file on the search path.
// With no file at all, KEYPRICE_* variables over defaults are used.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}
	if cfg, err := config.LoadFromEnv(); err == nil {
		return cfg, nil
	}
	return config.NewDefaultConfig(), nil
}

// serverAddr prefers --server, then the configured listener with wildcard
// hosts rewritten to localhost.
func serverAddr(cfg *config.Config, opts *RootOptions) string {
	if opts.ServerAddr != "" {
		return opts.ServerAddr
	}
	host, port := cfg.Server.HTTP.Host, cfg.Server.HTTP.Port
	if port == 0 {
		return defaultServerAddr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

func initClient(cfg *config.Config, opts *RootOptions) (*client.Client, error) {
	key := opts.APIKey
	if key == "" {
		key = os.Getenv(APIKeyEnv)
	}
	return client.NewClient(serverAddr(cfg, opts), key,
		client.WithTimeout(opts.Timeout),
		client.WithUserAgent("pricectl/"+Version),
	)
}

func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.InvalidParam("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.InvalidParam("command was not initialised by pricectl")
	}
	return cliCtx, nil
}

// remoteClient returns the API client, or a hint to pass --server when none
// could be built.
func remoteClient(cmd *cobra.Command) (*client.Client, *CLIContext, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cliCtx.Client == nil {
		return nil, nil, errors.New(errors.ErrCodeServiceUnavailable, "API client is not configured; pass --server")
	}
	return cliCtx.Client, cliCtx, nil
}

func commandContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
}

func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	PrintError(root, err)
	return err
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	switch path {
	case "":
		return nil, errors.InvalidParam("input file is required")
	case "-":
		return io.ReadAll(cmd.InOrStdin())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "read input").WithDetail(path)
	}
	return b, nil
}

func readJSONInput(cmd *cobra.Command, path string, dst interface{}) error {
	b, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decode input").WithDetail(path)
	}
	return nil
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return PrintResult(cmd, buildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate})
		},
	}
}

type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func (b buildInfo) String() string {
	return fmt.Sprintf("pricectl %s (commit: %s, built: %s)", b.Version, b.Commit, b.BuildDate)
}

func (b buildInfo) TableHeaders() []string { return []string{"VERSION", "COMMIT", "BUILT"} }
func (b buildInfo) TableRows() [][]string  { return [][]string{{b.Version, b.Commit, b.BuildDate}} }

//Personal.AI order the ending
