package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aitools/aitools/internal/server"
)

func newServeCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the registry over HTTP",
		Long:  `Start the HTTP API: tool listing, invocation, demo cards and, when an Anthropic key is configured, the chat relay.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := st.app(ctx)
			if err != nil {
				return err
			}
			return server.New(app).Run(ctx)
		},
	}
	cmd.Flags().String("host", "", "listen host")
	cmd.Flags().Int("port", 0, "listen port")
	_ = st.v.BindPFlag("host", cmd.Flags().Lookup("host"))
	_ = st.v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}
