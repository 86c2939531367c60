package commands

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/server"
)

// projectBooks reads the project files on each call.
type projectBooks struct {
	a *app
}

func (b projectBooks) Entries() ([]model.JournalEntry, error) {
	svc, err := b.a.journal()
	if err != nil {
		return nil, err
	}
	return svc.ReadAll()
}

func (b projectBooks) Assets() ([]model.Asset, error) {
	store, err := b.a.assets()
	if err != nil {
		return nil, err
	}
	return store.All(), nil
}

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the books and reports over a read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			engine, err := a.reportEngine()
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(projectBooks{a: a}, engine, a.catalog, a.cfg.Owner.UserID, a.log)
			return srv.Serve(ctx, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8710", "listen address")
	return cmd
}
