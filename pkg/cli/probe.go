package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/getwiretap/wiretap/pkg/cli/internal/output"
	"github.com/getwiretap/wiretap/pkg/config"
	"github.com/getwiretap/wiretap/pkg/engine"
	"github.com/getwiretap/wiretap/pkg/util"
	"github.com/spf13/cobra"
)

var (
	probeMethod  string
	probeData    string
	probeHeaders []string
	probeTimeout time.Duration
	probeVerbose bool
)

var probeCmd = &cobra.Command{
	Use:   "probe [url]",
	Short: "Send a request through a tracked client",
	Long: `Send one HTTP request through a fully tracked client and show the capture
events it produces.

With a project file present its tracking settings and captures apply, so the
output is exactly what an application embedding wiretap would log. A URL
without a scheme gets "https://" prepended. Without a URL argument the probe
asks interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	url := ""
	if len(args) > 0 {
		url = args[0]
	}
	if url == "" {
		if err := probeForm(&url); err != nil {
			return err
		}
	}
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}

	e := engine.New(nil)
	if path, err := resolveProjectFile(); err == nil {
		if err := e.LoadFile(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	} else if !errors.Is(err, config.ErrFileNotFound) {
		return err
	}

	// The probe's own output IS the tracking record: console on for humans,
	// off when --json asks for the raw events.
	if jsonOutput {
		e.DisableConsoleLogging()
	} else {
		e.EnableConsoleLogging()
	}
	if probeVerbose {
		e.SetConfig(&config.Config{LogLevel: "debug"})
	}

	var bodyReader io.Reader
	if probeData != "" {
		bodyReader = strings.NewReader(probeData)
	}
	req, err := http.NewRequestWithContext(cmd.Context(), strings.ToUpper(probeMethod), url, bodyReader)
	if err != nil {
		return err
	}
	for _, h := range probeHeaders {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q (want \"Name: value\")", h)
		}
		req.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if probeData != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	client := e.WrapClient(&http.Client{Timeout: probeTimeout})
	resp, err := client.Do(req)
	if err != nil {
		if jsonOutput {
			_ = output.JSON(e.Events())
		}
		return err
	}
	defer resp.Body.Close()
	body, readErr := io.ReadAll(resp.Body)

	if jsonOutput {
		return output.JSON(e.Events())
	}

	fmt.Printf("\n%s %s\n", resp.Proto, resp.Status)
	if probeVerbose {
		keys := make([]string, 0, len(resp.Header))
		for k := range resp.Header {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s: %s\n", k, strings.Join(resp.Header[k], ", "))
		}
	}
	if len(body) > 0 {
		fmt.Println()
		fmt.Println(util.TruncateBody(string(body), util.MaxLogBodySize))
	}
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}
	return nil
}

func probeForm(url *string) error {
	var body string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What URL should the probe call?").
				Placeholder("https://api.example.com/v1/users").
				Value(url).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("url is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("HTTP method").
				Options(
					huh.NewOption("GET", "GET"),
					huh.NewOption("POST", "POST"),
					huh.NewOption("PUT", "PUT"),
					huh.NewOption("DELETE", "DELETE"),
					huh.NewOption("PATCH", "PATCH"),
				).
				Value(&probeMethod),
			huh.NewText().
				Title("Request body (optional)").
				Placeholder(`{"plan":"pro"}`).
				Value(&body),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if body != "" {
		probeData = body
	}
	return nil
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVarP(&probeMethod, "method", "X", "GET", "HTTP method")
	probeCmd.Flags().StringVarP(&probeData, "data", "d", "", "Request body")
	probeCmd.Flags().StringArrayVarP(&probeHeaders, "header", "H", nil, "Request header as \"Name: value\" (repeatable)")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 30*time.Second, "Request timeout")
	probeCmd.Flags().BoolVarP(&probeVerbose, "verbose", "v", false, "Show response headers and per-call detail")
}
