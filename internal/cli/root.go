package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/clausescope/internal/logging"
	"github.com/ppiankov/clausescope/internal/model"
)

// version is overridden at build time with -ldflags "-X ...cli.version=..."
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clausescope",
	Short: "ClauseScope - subject/verb/object clauses and dates from contract text",
	Long: `ClauseScope reads contract text and reports who must do what.

For every sentence it finds the main verb, its subject and its object and
emits a short "subject verb object" clause. It also finds the dates the
text mentions and renders entities and dates as highlighted HTML.

ClauseScope is a reading aid. It does not interpret contract law.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of ClauseScope.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clausescope %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.clausescope/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".clausescope"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// CLAUSESCOPE_PARSER_PROVIDER overrides parser.provider, and so on
	viper.SetEnvPrefix("CLAUSESCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(model.DefaultConfig())
	_ = viper.BindEnv("parser.api_key", "CLAUSESCOPE_PARSER_API_KEY", "OPENAI_API_KEY")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so environment variables reach Unmarshal
func setDefaults(cfg *model.Config) {
	defaults := map[string]any{
		"parser.provider":        cfg.Parser.Provider,
		"parser.model":           cfg.Parser.Model,
		"parser.base_url":        cfg.Parser.BaseURL,
		"parser.timeout":         cfg.Parser.Timeout,
		"dates.distance":         cfg.Dates.Distance,
		"highlight.strategy":     cfg.Highlight.Strategy,
		"cache.enabled":          cfg.Cache.Enabled,
		"cache.ttl":              cfg.Cache.TTL,
		"cache.cleanup_interval": cfg.Cache.CleanupInterval,
		"http.timeout":           cfg.HTTP.Timeout,
		"http.user_agent":        cfg.HTTP.UserAgent,
		"http.max_body_bytes":    cfg.HTTP.MaxBodyBytes,
		"http.respect_robots":    cfg.HTTP.RespectRobots,
		"http.http_proxy":        cfg.HTTP.HTTPProxy,
		"http.https_proxy":       cfg.HTTP.HTTPSProxy,
		"http.no_proxy":          cfg.HTTP.NoProxy,
		"concurrency.workers":    cfg.Concurrency.Workers,
		"server.addr":            cfg.Server.Addr,
		"server.max_text_bytes":  cfg.Server.MaxTextBytes,
		"server.rate_limit":      cfg.Server.RateLimit,
		"server.rate_burst":      cfg.Server.RateBurst,
		"server.read_timeout":    cfg.Server.ReadTimeout,
		"server.write_timeout":   cfg.Server.WriteTimeout,
		"log.level":              cfg.Log.Level,
		"log.development":        cfg.Log.Development,
		"output.verbose":         cfg.Output.Verbose,
		"output.format":          cfg.Output.Format,
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

// loadConfig merges defaults, config file and environment into a validated Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger; verbose runs log at info or lower
func newLogger(cfg *model.Config) (logging.Logger, error) {
	logCfg := cfg.Log
	if cfg.Output.Verbose && (logCfg.Level == "warn" || logCfg.Level == "error") {
		logCfg.Level = "info"
	}
	return logging.New(logCfg)
}

// progress writes a status line to stderr when verbose output is on
func progress(cmd *cobra.Command, cfg *model.Config, format string, args ...any) {
	if !cfg.Output.Verbose {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
