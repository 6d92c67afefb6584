package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marcus/fastly-stats/internal/output"
	"github.com/spf13/cobra"
)

func newSummaryCmd(newClient clientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the stats summary for a service",
		Long: `Fetches the stats summary for a service and prints the JSON response.
The summary has no tabular form, so text and JSON output are the same.`,
		Example: `  fastly-stats summary --service SU1Z0isxPaozGVKXdv0eY`,
		GroupID: "query",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			service, _ := cmd.Flags().GetString("service")
			if strings.TrimSpace(service) == "" {
				return errors.New("--service must not be empty")
			}
			jsonOut, _ := cmd.Flags().GetBool("json")

			doc, err := newClient(settings).Summary(cmd.Context(), service)
			if err != nil {
				return fmt.Errorf("fetch summary: %w", err)
			}
			return output.New(cmd.OutOrStdout()).Summary(doc, settings.Mode(jsonOut))
		},
	}

	cmd.Flags().String("service", "", "Fastly service ID (required)")
	cmd.Flags().Bool("json", false, "Output the raw JSON response")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}
