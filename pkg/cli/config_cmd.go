package cli

import (
	"errors"
	"fmt"

	"github.com/getwiretap/wiretap/pkg/cli/internal/output"
	"github.com/getwiretap/wiretap/pkg/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate the project file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective tracking configuration",
	Long: `Show the tracking configuration an application would run with: the project
file's tracking section (environment variables expanded) merged over the
defaults. Without a project file the defaults are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		merged := config.Default()

		path, err := resolveProjectFile()
		switch {
		case err == nil:
			f, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			merged.Merge(f.Tracking)
		case errors.Is(err, config.ErrFileNotFound):
			path = ""
		default:
			return err
		}

		if jsonOutput {
			return output.JSON(merged)
		}
		if path != "" {
			fmt.Printf("# %s\n", path)
		} else {
			fmt.Println("# defaults (no project file found)")
		}
		return output.YAML(merged)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a project file",
	Long: `Validate a project file against the schema, including every capture file
it references. Exits non-zero when the file does not load cleanly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		var err error
		if len(args) > 0 {
			path = args[0]
		} else {
			path, err = resolveProjectFile()
			if err != nil {
				return err
			}
		}

		f, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		// Referenced capture files and globs must expand cleanly too.
		entries, err := config.LoadAllCaptures(f.Captures, config.BaseDir(path))
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(map[string]any{
				"file":     path,
				"valid":    true,
				"captures": len(entries),
			})
		}
		fmt.Printf("%s is valid (%d captures)\n", path, len(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}
