package cli

import (
	"fmt"
	"os"

	"github.com/getwiretap/wiretap/pkg/config"
	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	configPath string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wiretap",
	Short: "wiretap observes the HTTP calls a process makes",
	Long: `wiretap records outbound HTTP traffic: which endpoints a process calls,
with what payloads, and what came back.

The CLI issues probe requests through the same interception pipeline the
library embeds in applications, and manages the wiretap.yaml project file
that configures tracking and declarative captures.`,
	// No Run function here means 'wiretap' with no args prints help text.
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "", "Project file path (default: discover wiretap.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// resolveProjectFile returns the project file to operate on. An explicit
// --config wins; otherwise discovery probes WIRETAP_CONFIG and the working
// directory.
func resolveProjectFile() (string, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return "", fmt.Errorf("%w: %s", config.ErrFileNotFound, configPath)
		}
		return configPath, nil
	}
	return config.Discover()
}
