package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-csv/internal/cli/output"
	"github.com/telhawk-systems/telhawk-csv/internal/dlq"
)

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect rejected header lines",
}

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rejected header lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer(cmd)
		if err != nil {
			return err
		}
		q, err := openDLQ(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := q.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return p.Result(entries, func() *output.Table {
			t := output.NewTable("ID", "SOURCE", "LINE", "REASON", "ERROR", "AT")
			for _, e := range entries {
				t.AddRow(e.Envelope.ID, e.Envelope.Source, fmt.Sprint(e.Envelope.LineNumber),
					e.Reason, e.Error, e.Timestamp.Format(time.RFC3339))
			}
			return t
		})
	},
}

var dlqPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every rejected header line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer(cmd)
		if err != nil {
			return err
		}
		q, err := openDLQ(cmd)
		if err != nil {
			return err
		}
		deleted, err := q.Purge(cmd.Context())
		if err != nil {
			return err
		}
		p.Success("Purged %d entries", deleted)
		return nil
	},
}

func openDLQ(cmd *cobra.Command) (*dlq.Queue, error) {
	if !cfg.DLQ.Enabled {
		return nil, dlq.ErrDisabled
	}
	return dlq.NewQueue(cfg.DLQ.BasePath, newLogger(cmd))
}

func init() {
	rootCmd.AddCommand(dlqCmd)
	dlqCmd.AddCommand(dlqListCmd, dlqPurgeCmd)
	dlqListCmd.Flags().IntP("limit", "n", 0, "maximum entries to list (0 for all)")
}
