// Command portctl works on the stored inventory document without the web
// server: export, import, reset and port queries.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go-portmap/internal/config"
	"go-portmap/internal/db"
	"go-portmap/internal/inventory"
	"go-portmap/internal/logger"
	"go-portmap/internal/seed"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	dial func(ctx context.Context, cfg config.StorageConfig) (db.KV, error)

	cfg *config.Config
	log *zap.Logger
	kv  db.KV
	w   *db.Writer
	inv *inventory.Engine
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	lg, err := logger.NewLogger(cfg.Log.Level, "console", "portctl")
	if err != nil {
		return err
	}
	dial := a.dial
	if dial == nil {
		dial = db.Open
	}
	kv, err := dial(cmd.Context(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	a.cfg, a.log, a.kv = cfg, lg, kv
	a.w = db.NewWriter(kv, cfg.Storage.Key, lg, nil)
	a.inv = inventory.Boot(cmd.Context(), kv, cfg.Storage.Key, inventory.Options{
		Sink:   a.w,
		Logger: lg,
		Seed:   seed.FromFile(cfg.SeedPath, nil),
	})
	return nil
}

// close flushes the writer and reports a write that did not reach storage.
func (a *app) close() error {
	var err error
	if a.w != nil {
		if werr := a.w.Close(); werr != nil {
			err = fmt.Errorf("save to %s storage: %w", a.cfg.Storage.Driver, werr)
		}
		a.w = nil
	}
	if a.kv != nil {
		a.kv.Close()
		a.kv = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return err
}

// run executes args and returns the first error of the command or of the
// final save.
func run(ctx context.Context, a *app, args []string) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "portctl",
		Short:         "Inspect and maintain the port inventory document",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "export [file]",
			Short: "Write the document as JSON to a file or stdout",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					return a.inv.Export(cmd.OutOrStdout())
				}
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				return a.inv.Export(f)
			},
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Replace the document with a JSON export",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				if err := a.inv.Import(f); err != nil {
					return err
				}
				if err := a.close(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "imported", args[0])
				return nil
			},
		},
		resetCmd(a),
		&cobra.Command{
			Use:   "next-port <switch-id>",
			Short: "Print the lowest free port of a switch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				port, ok, err := a.inv.NextAvailablePort(args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("all ports on %s are in use", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), port)
				return nil
			},
		},
		&cobra.Command{
			Use:   "layout <switch-id>",
			Short: "Print the port rows of a switch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rows, err := a.inv.SwitchLayout(args[0])
				if err != nil {
					return err
				}
				for _, row := range rows {
					cells := make([]string, len(row))
					for i, p := range row {
						cells[i] = fmt.Sprintf("%3d", p)
					}
					fmt.Fprintln(cmd.OutOrStdout(), strings.Join(cells, " "))
				}
				return nil
			},
		},
	)
	return root
}

func resetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the document and start over from the seed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset removes every floor, port and connection; rerun with --yes")
			}
			return a.inv.Reset()
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func main() {
	if err := run(context.Background(), &app{}, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "portctl:", err)
		os.Exit(1)
	}
}
