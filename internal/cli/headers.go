package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-csv/internal/cli/output"
	"github.com/telhawk-systems/telhawk-csv/internal/csv/field"
	"github.com/telhawk-systems/telhawk-csv/internal/csv/headers"
	"github.com/telhawk-systems/telhawk-csv/internal/event"
	"github.com/telhawk-systems/telhawk-csv/internal/messaging"
	natsclient "github.com/telhawk-systems/telhawk-csv/internal/messaging/nats"
	"github.com/telhawk-systems/telhawk-csv/internal/model"
)

var headersCmd = &cobra.Command{
	Use:   "headers",
	Short: "Encode and decode CSV header blocks",
}

var headersLoadCmd = &cobra.Command{
	Use:   "load <header line>",
	Short: "Load a raw header line into header properties",
	Example: `  csvevents headers load --line 1 'timestamp,src ip,bytes'
  csvevents headers load --line 1 --normalize -o json 'timestamp,host'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, _ := cmd.Flags().GetInt64("line")
		normalize, _ := cmd.Flags().GetBool("normalize")

		h := headers.New()
		if err := h.Load(line, args[0]); err != nil {
			return err
		}
		if normalize {
			if err := h.Normalize(); err != nil {
				return err
			}
		}
		return printProperties(cmd, h.Properties())
	},
}

var headersDecodeCmd = &cobra.Command{
	Use:   "decode <header line>",
	Short: "Decode a header line into typed columns",
	Long: `Decode loads a header line and decodes its tokens. Tokens may be bare
column names or typed name(type) tokens such as "bytes(long)" or
"timestamp(time:2006-01-02 15:04:05)".`,
	Example: `  csvevents headers decode --line 3 'timestamp(time:2006-01-02),bytes(long),host'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, _ := cmd.Flags().GetInt64("line")

		h := headers.New()
		if err := h.Load(line, args[0]); err != nil {
			return err
		}
		block, err := model.NewHeaderBlock(h)
		if err != nil {
			return err
		}
		return printBlock(cmd, block)
	},
}

var headersEncodeCmd = &cobra.Command{
	Use:   "encode <name:type[:layout]>...",
	Short: "Encode column definitions into header properties",
	Example: `  csvevents headers encode --line 1 timestamp:time:2006-01-02 host bytes:long ok:boolean`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, _ := cmd.Flags().GetInt64("line")

		fields := make([]field.Field, 0, len(args))
		for _, spec := range args {
			f, err := field.ParseSpec(spec)
			if err != nil {
				return fmt.Errorf("column %q: %w", spec, err)
			}
			fields = append(fields, f)
		}
		return printProperties(cmd, headers.FromFields(line, fields).Properties())
	},
}

var headersSubmitCmd = &cobra.Command{
	Use:   "submit <header line>",
	Short: "Process a header line and store it for a source",
	Long: `Submit runs a header line through the processing pipeline: the line is
loaded, decoded and stored under --source in the configured store, announced on
NATS when enabled, and recorded in the dead letter queue when rejected.`,
	Example: `  csvevents headers submit --source firewall --line 1 'timestamp,src ip,bytes'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")
		line, _ := cmd.Flags().GetInt64("line")
		if source == "" {
			return fmt.Errorf("--source is required")
		}

		rt, err := newRuntime(cmd.Context(), cfg, newLogger(cmd))
		if err != nil {
			return err
		}
		defer rt.Close()

		block, err := rt.processor.Process(cmd.Context(), model.NewHeaderEnvelope(source, line, args[0]))
		if err != nil {
			return err
		}
		return printBlock(cmd, block)
	},
}

var headersGetCmd = &cobra.Command{
	Use:   "get <source>",
	Short: "Show the stored header block of a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context(), cfg, newLogger(cmd))
		if err != nil {
			return err
		}
		defer rt.Close()

		block, err := rt.processor.Lookup(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("source %s: %w", args[0], err)
		}
		return printBlock(cmd, block)
	},
}

var headersForgetCmd = &cobra.Command{
	Use:   "forget <source>",
	Short: "Delete the stored header block of a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer(cmd)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd.Context(), cfg, newLogger(cmd))
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.processor.Forget(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("source %s: %w", args[0], err)
		}
		p.Success("Deleted header block for %s", args[0])
		return nil
	},
}

var headersWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print header blocks announced on NATS",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer(cmd)
		if err != nil {
			return err
		}
		source, _ := cmd.Flags().GetString("source")
		logger := newLogger(cmd)

		client, err := natsclient.NewClient(natsclient.ConfigFrom(cfg.NATS), logger)
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sub, err := client.Subscribe(cfg.NATS.Subject, func(_ context.Context, msg *messaging.Message) error {
			if source != "" && msg.Metadata[messaging.MetaSource] != source {
				return nil
			}
			p.Info("%s %s", msg.Metadata[messaging.MetaSource], string(msg.Data))
			return nil
		})
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", cfg.NATS.Subject, err)
		}
		defer sub.Unsubscribe()

		p.Info("Watching %s (Ctrl-C to stop)", cfg.NATS.Subject)
		<-ctx.Done()
		return nil
	},
}

func printProperties(cmd *cobra.Command, props []event.Property) error {
	p, err := printer(cmd)
	if err != nil {
		return err
	}
	return p.Result(model.Properties(props), func() *output.Table {
		t := output.NewTable("NAME", "KIND", "VALUE")
		for _, prop := range props {
			t.AddRow(prop.Name, prop.Kind.String(), fmt.Sprint(prop.Value))
		}
		return t
	})
}

func printBlock(cmd *cobra.Command, block *model.HeaderBlock) error {
	p, err := printer(cmd)
	if err != nil {
		return err
	}
	return p.Result(block, func() *output.Table {
		t := output.NewTable("INDEX", "NAME", "TYPE", "FORMAT", "TOKEN")
		for _, c := range block.Columns {
			t.AddRow(strconv.Itoa(c.Index), c.Name, c.Type, c.Format, c.Token)
		}
		return t
	})
}

func init() {
	rootCmd.AddCommand(headersCmd)
	headersCmd.AddCommand(headersLoadCmd, headersDecodeCmd, headersEncodeCmd,
		headersSubmitCmd, headersGetCmd, headersForgetCmd, headersWatchCmd)

	for _, c := range []*cobra.Command{headersLoadCmd, headersDecodeCmd, headersEncodeCmd, headersSubmitCmd} {
		c.Flags().Int64P("line", "l", 1, "line number of the header line")
	}
	headersLoadCmd.Flags().Bool("normalize", false, "rewrite bare names as typed tokens")
	headersSubmitCmd.Flags().StringP("source", "s", "", "source the header line belongs to")
	headersWatchCmd.Flags().StringP("source", "s", "", "only show blocks for this source")
}
