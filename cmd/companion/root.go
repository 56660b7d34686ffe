package main

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	logFormat string
	verbose   bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Device permissions and guarded mount control for NINA",
	Long: `Companion manages device capability permissions (camera, location,
notifications) and guards telescope mount connections on a NINA instance.
When the active profile asks for location sync confirmation, companion
prompts for a sync direction before connecting.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.companion.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&logFormat, "log-format", "text", "log format on stderr: text or json")
	flags.String("platform", "", "platform override: ios, android, web (default from device file)")
	flags.String("api-url", "", "NINA Advanced API base URL")
	flags.String("device", "", "simulated device file (default is $HOME/.companion/device.yaml)")
	flags.Bool("non-interactive", false, "never prompt; pending confirmations are cancelled")

	_ = viper.BindPFlag("platform", flags.Lookup("platform"))
	_ = viper.BindPFlag("api.base_url", flags.Lookup("api-url"))
	_ = viper.BindPFlag("device_file", flags.Lookup("device"))
	_ = viper.BindPFlag("non_interactive", flags.Lookup("non-interactive"))
}

// initConfig loads configuration from the config file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("failed to find home directory", "error", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".companion")
	}

	// COMPANION_API_BASE_URL, COMPANION_PLATFORM, ...
	viper.SetEnvPrefix("companion")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	case errors.As(err, &notFound):
	default:
		slog.Error("failed to read config file", "file", viper.ConfigFileUsed(), "error", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(logFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
