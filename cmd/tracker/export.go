package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tracker/internal/cli"
	"tracker/internal/export"
	apphttp "tracker/internal/http"
	applog "tracker/internal/log"
	"tracker/internal/query"
	"tracker/internal/services"
)

type exportOptions struct {
	typ      string
	category string
	search   string
	output   string
}

func newExportCmd() *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered transactions as CSV",
		Long: `Export writes the transaction table, newest first, in the same CSV
format as the download endpoint. Use --output - to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			logger := cli.SetupLogger(cfg.LogLevel, cmd.ErrOrStderr())

			app, err := cli.InitApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			filter, err := opts.filter()
			if err != nil {
				return err
			}
			var n int
			if opts.output == "-" {
				n, err = writeExport(cmd.OutOrStdout(), app.Service, filter)
			} else {
				f, cerr := os.Create(opts.output)
				if cerr != nil {
					return fmt.Errorf("create %s: %w", opts.output, cerr)
				}
				n, err = writeExportAndClose(f, app.Service, filter)
			}
			if err != nil {
				return err
			}
			logger.Info("Transactions exported",
				applog.FieldOperation, applog.OpExport, applog.FieldCount, n, "output", opts.output)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.typ, "type", query.All, "filter by type: all, income or expense")
	cmd.Flags().StringVar(&opts.category, "category", query.All, "filter by category id")
	cmd.Flags().StringVarP(&opts.search, "search", "q", "", "case-insensitive substring of notes")
	cmd.Flags().StringVarP(&opts.output, "output", "o", export.FileName, "output file, - for stdout")
	return cmd
}

func (o exportOptions) filter() (query.Filter, error) {
	return apphttp.ParseFilter(map[string][]string{
		"type":     {o.typ},
		"category": {o.category},
		"q":        {o.search},
	})
}

// writeExport writes the CSV and returns the number of transactions in it.
func writeExport(w io.Writer, svc *services.TrackerService, f query.Filter) (int, error) {
	txs := svc.Transactions(f)
	if err := export.WriteCSV(w, txs); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(txs), nil
}

// writeExportAndClose is writeExport for files: a failed Close means the CSV
// may not have reached disk, so it is reported like a write error.
func writeExportAndClose(wc io.WriteCloser, svc *services.TrackerService, f query.Filter) (n int, err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			n, err = 0, fmt.Errorf("close output: %w", cerr)
		}
	}()
	return writeExport(wc, svc, f)
}
