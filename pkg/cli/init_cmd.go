package cli

import (
	"fmt"
	"os"

	"github.com/getwiretap/wiretap/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

const starterProjectFile = `# wiretap project file
# Loaded by applications via engine.LoadFile and by the wiretap CLI.
tracking:
  enabled: true
  logLevel: info
  logRequestBody: true
  logResponseBody: true
  # Substring filters against the full URL. includeUrls wins when both are set.
  excludeUrls: []
  # JSONPath locations masked in logged bodies, e.g. "$.password".
  redactKeys: []

captures: []
  # - method: POST
  #   url: api.stripe.com/v1/charges
  #   note: payments
  # - files: captures/**/*.yaml
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter project file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DiscoveryOrder[0]
		if configPath != "" {
			path = configPath
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.WriteFile(path, []byte(starterProjectFile), 0644); err != nil {
			return err
		}
		fmt.Printf("created %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing project file")
}
