package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcus/fastly-stats/internal/dateparse"
	"github.com/marcus/fastly-stats/internal/fastly"
	"github.com/marcus/fastly-stats/internal/output"
	"github.com/spf13/cobra"
)

const (
	chartHeight = 12
	// chartMargin leaves room for the y-axis labels.
	chartMargin = 14
)

func newStatsCmd(newClient clientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show request counts over time for a service",
		Long: `Fetches historical stats for a service and prints one line per bucket:

  <start_time>	<requests>

--from and --to accept RFC 3339 timestamps, which are sent as epoch seconds,
or any expression the Fastly API understands ("1 day ago", "now").`,
		Example: `  fastly-stats stats --service SU1Z0isxPaozGVKXdv0eY
  fastly-stats stats --service SU1Z0isxPaozGVKXdv0eY --from 2026-02-18T00:00:00Z --by hour
  fastly-stats stats --service SU1Z0isxPaozGVKXdv0eY --from "2 hours ago" --json`,
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
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			by, _ := cmd.Flags().GetString("by")
			jsonOut, _ := cmd.Flags().GetBool("json")
			chart, _ := cmd.Flags().GetBool("chart")

			query := fastly.StatsQuery{
				Service: service,
				By:      by,
				Range:   fastly.TimeRange{From: from, To: to},
			}
			slog.Debug("stats query", "service", service, "by", by,
				"from", from, "from_timestamp", dateparse.IsTimestamp(from),
				"to", to, "to_timestamp", dateparse.IsTimestamp(to))

			doc, err := newClient(settings).Stats(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("fetch stats: %w", err)
			}

			r := output.New(cmd.OutOrStdout())
			mode := settings.Mode(jsonOut)
			if chart {
				if mode == output.ModeText {
					return r.Chart(doc, output.TerminalWidth(cmd.OutOrStdout(), 0)-chartMargin, chartHeight)
				}
				output.Warning(cmd.ErrOrStderr(), "--chart is ignored with JSON output")
			}
			return r.Stats(doc, mode)
		},
	}

	cmd.Flags().String("service", "", "Fastly service ID (required)")
	cmd.Flags().String("from", "", "Start of the time range")
	cmd.Flags().String("to", "", "End of the time range")
	cmd.Flags().String("by", fastly.DefaultGranularity, "Bucket size: minute, hour or day")
	cmd.Flags().Bool("json", false, "Output the raw JSON response")
	cmd.Flags().Bool("chart", false, "Plot requests as an ASCII chart (text mode only)")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}
