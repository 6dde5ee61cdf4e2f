package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/indentscope/internal/app"
	"github.com/dshills/indentscope/internal/renderer/backend"
)

func newViewCmd(c *cli) *cobra.Command {
	var (
		script   string
		tabWidth int
	)
	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Browse a file with live scope markers",
		Long: `Open FILE in a read-only terminal viewer that draws the scope at the cursor.

Keys:
  arrows, h j k l     move
  PgUp PgDn           scroll a page
  ctrl-u ctrl-d       scroll half a page
  g G                 first / last line
  [ ]                 jump to the scope border
  t                   toggle scope markers
  q Esc               quit`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{fileLogging: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(app.Options{
				Path:     args[0],
				Script:   script,
				TabWidth: tabWidth,
				Config:   c.cfg,
				Logger:   c.logger,
			})
			if err != nil {
				return err
			}

			term, err := backend.NewTerminal()
			if err != nil {
				return err
			}
			if err := application.SetBackend(term); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c.logger.Info("viewer started", zap.String("path", args[0]))
			return application.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&script, "script", "", "Lua script run after startup")
	cmd.Flags().IntVar(&tabWidth, "tab-width", 0, "indent width (default 4)")
	return cmd
}
