package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/getwiretap/wiretap/pkg/cli/internal/output"
	"github.com/getwiretap/wiretap/pkg/config"
	"github.com/spf13/cobra"
)

var capturesCmd = &cobra.Command{
	Use:   "captures",
	Short: "Manage capture definitions in the project file",
	Long: `Manage the captures section of the project file.

Captures declared in the file register as observation-only interceptors when
an application (or the probe command) loads it. File references and globs are
expanded relative to the project file's directory.`,
}

var capturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List capture definitions, file references expanded",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveProjectFile()
		if err != nil {
			return err
		}
		f, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		entries, err := config.LoadAllCaptures(f.Captures, config.BaseDir(path))
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(entries)
		}
		if len(entries) == 0 {
			fmt.Printf("no captures in %s\n", path)
			return nil
		}
		w := output.Table()
		fmt.Fprintln(w, "METHOD\tURL\tTYPE\tNOTE")
		for _, e := range entries {
			method := e.Method
			if method == "" {
				method = "*"
			}
			kind := "literal"
			if e.Regex {
				kind = "regex"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", method, e.URL, kind, e.Note)
		}
		return w.Flush()
	},
}

var (
	captureAddMethod string
	captureAddURL    string
	captureAddRegex  bool
	captureAddNote   string
)

var capturesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a capture definition to the project file",
	Long: `Append one capture definition to the project file, creating the file when
none exists. Without --url the command asks interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if captureAddURL == "" {
			if err := captureForm(); err != nil {
				return err
			}
		}
		method := captureAddMethod
		if method == "*" {
			method = ""
		}
		entry := config.CaptureEntry{
			Method: method,
			URL:    captureAddURL,
			Regex:  captureAddRegex,
			Note:   captureAddNote,
		}
		if err := entry.Validate(); err != nil {
			return err
		}

		path, err := resolveProjectFile()
		var f *config.File
		switch {
		case err == nil:
			f, err = config.LoadFile(path)
			if err != nil {
				return err
			}
		case errors.Is(err, config.ErrFileNotFound):
			path = config.DiscoveryOrder[0]
			f = &config.File{}
		default:
			return err
		}

		f.Captures = append(f.Captures, entry)
		if err := config.Save(path, f); err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(entry)
		}
		shown := entry.Method
		if shown == "" {
			shown = "*"
		}
		fmt.Printf("added capture %s %s to %s\n", shown, entry.URL, path)
		return nil
	},
}

func captureForm() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What URL pattern should be captured?").
				Placeholder("api.stripe.com/v1/charges").
				Value(&captureAddURL).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("url pattern is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("HTTP method").
				Options(
					huh.NewOption("any", "*"),
					huh.NewOption("GET", "GET"),
					huh.NewOption("POST", "POST"),
					huh.NewOption("PUT", "PUT"),
					huh.NewOption("DELETE", "DELETE"),
					huh.NewOption("PATCH", "PATCH"),
				).
				Value(&captureAddMethod),
			huh.NewConfirm().
				Title("Treat the pattern as a regular expression?").
				Value(&captureAddRegex),
			huh.NewInput().
				Title("Note (optional)").
				Placeholder("payments capture").
				Value(&captureAddNote),
		),
	)
	return form.Run()
}

func init() {
	rootCmd.AddCommand(capturesCmd)
	capturesCmd.AddCommand(capturesListCmd)
	capturesCmd.AddCommand(capturesAddCmd)

	capturesAddCmd.Flags().StringVar(&captureAddMethod, "method", "*", "HTTP method to match (\"*\" for any)")
	capturesAddCmd.Flags().StringVar(&captureAddURL, "url", "", "URL pattern to match")
	capturesAddCmd.Flags().BoolVar(&captureAddRegex, "regex", false, "Treat the pattern as a regular expression")
	capturesAddCmd.Flags().StringVar(&captureAddNote, "note", "", "Free-form note stored with the entry")
}
