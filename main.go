package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is the application version, set via ldflags.
var version string = "dev" // Default for local builds

var (
	cfgFile string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "listclip",
	Short: "List files and copy to clipboard",
	Long: `listclip recursively lists the files under a directory and copies the
list to the clipboard, optionally followed by the content of every text file.`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := setupLogging(viper.GetBool("debug"))
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		logger = l
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync() //nolint:errcheck

		opts, err := loadOptions()
		if err != nil {
			return err
		}
		return run(opts, loadDeliveryConfig(), cmd.OutOrStdout())
	},
}

// run collects, renders and delivers a single report.
func run(opts Options, delivery deliveryConfig, stdout io.Writer) error {
	// Keep stdout clean when it carries the report itself.
	console := stdout
	if delivery.NoClipboard && delivery.OutputFile == "" {
		console = os.Stderr
	}

	collector := NewCollector(logger)
	if viper.GetBool("verbose") {
		collector.Progress = console
	}
	report, err := collector.Run(opts)
	if err != nil {
		return err
	}

	output, err := Format(report, opts.Format)
	if err != nil {
		return err
	}

	delivery.Stdout = stdout
	if err := deliver(output, delivery); err != nil {
		return err
	}

	printSummary(console, summaryLine(report, opts, delivery))
	return nil
}

// loadOptions builds the traversal options from flags, environment and config.
func loadOptions() (Options, error) {
	format := FormatPlain
	if viper.GetBool("json") && viper.GetBool("yaml") {
		return Options{}, fmt.Errorf("--json and --yaml cannot be used together")
	}
	if viper.GetBool("json") {
		format = FormatJSON
	} else if viper.GetBool("yaml") {
		format = FormatYAML
	} else if f := viper.GetString("format"); f != "" {
		parsed, err := ParseOutputFormat(f)
		if err != nil {
			return Options{}, err
		}
		format = parsed
	}

	return Options{
		Start:          viper.GetString("start"),
		RespectIgnore:  !viper.GetBool("no_gitignore"),
		Extensions:     normalizeExtensions(viper.GetStringSlice("ext")),
		IncludeContent: !viper.GetBool("no_content"),
		Format:         format,
		Hidden:         viper.GetBool("hidden"),
	}, nil
}

func loadDeliveryConfig() deliveryConfig {
	return deliveryConfig{
		OutputFile:     viper.GetString("out"),
		NoClipboard:    viper.GetBool("no_clipboard"),
		ClipboardDelay: viper.GetDuration("clipboard_delay"),
	}
}

// normalizeExtensions drops empty values and a leading dot ("--ext .go" means "go").
func normalizeExtensions(exts []string) []string {
	var out []string
	for _, ext := range exts {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/listclip/config.toml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	// Traversal
	rootCmd.Flags().StringP("start", "s", ".", "Starting directory")
	viper.BindPFlag("start", rootCmd.Flags().Lookup("start"))
	rootCmd.Flags().Bool("no-gitignore", false, "Do not respect .gitignore, .git/info/exclude and .ignore rules")
	viper.BindPFlag("no_gitignore", rootCmd.Flags().Lookup("no-gitignore"))
	rootCmd.Flags().BoolP("hidden", "H", false, "List hidden files and directories")
	viper.BindPFlag("hidden", rootCmd.Flags().Lookup("hidden"))
	rootCmd.Flags().StringSliceP("ext", "e", nil, "Filter by file extension (repeatable, e.g. --ext go --ext toml)")
	viper.BindPFlag("ext", rootCmd.Flags().Lookup("ext"))
	rootCmd.Flags().Bool("no-content", false, "Disable content inclusion, list files only")
	viper.BindPFlag("no_content", rootCmd.Flags().Lookup("no-content"))

	// Output
	rootCmd.Flags().StringP("out", "o", "", "Output file to save the list and contents")
	viper.BindPFlag("out", rootCmd.Flags().Lookup("out"))
	rootCmd.Flags().Bool("json", false, "Output as JSON")
	viper.BindPFlag("json", rootCmd.Flags().Lookup("json"))
	rootCmd.Flags().Bool("yaml", false, "Output as YAML")
	viper.BindPFlag("yaml", rootCmd.Flags().Lookup("yaml"))
	rootCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	rootCmd.Flags().BoolP("verbose", "v", false, "Verbose mode: print every visited path")
	viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
	rootCmd.Flags().Bool("no-clipboard", false, "Do not touch the clipboard (prints to stdout unless --out is set)")
	viper.BindPFlag("no_clipboard", rootCmd.Flags().Lookup("no-clipboard"))
	rootCmd.Flags().Duration("clipboard-delay", 2*time.Second, "How long to stay alive after setting the clipboard")
	viper.BindPFlag("clipboard_delay", rootCmd.Flags().Lookup("clipboard-delay"))

	viper.SetDefault("start", ".")
	viper.SetDefault("format", "plain")
	viper.SetDefault("clipboard_delay", 2*time.Second)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "listclip"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("LISTCLIP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match LISTCLIP_*

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
