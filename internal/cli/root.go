// Package cli implements the aitools command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aitools/aitools/internal/bootstrap"
	"github.com/aitools/aitools/internal/config"
)

var (
	successText = color.New(color.FgGreen).SprintFunc()
	failedText  = color.New(color.FgRed).SprintFunc()
	warnText    = color.New(color.FgYellow).SprintFunc()
)

// state is shared by the commands of one root.
type state struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

// app builds the wired application from the loaded config.
func (s *state) app(ctx context.Context) (*bootstrap.App, error) {
	return bootstrap.New(ctx, s.cfg)
}

// NewRootCommand returns the aitools command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	st := &state{v: viper.New()}

	root := &cobra.Command{
		Use:           "aitools",
		Short:         "aitools: registry of AI SDK tools with a uniform invocation contract",
		Version:       bootstrap.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Flags > environment > config file > defaults.
			cfg, err := config.Load(st.v, st.cfgFile)
			if err != nil {
				return err
			}
			st.cfg = cfg
			bootstrap.SetupLogging(cfg, cmd.ErrOrStderr())
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&st.cfgFile, "config", "c", "", "config file (JSON or YAML); defaults to $AITOOLS_CONFIG")
	pf.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.String("mode", config.DefaultMode, "default invocation mode (live or demo)")
	pf.String("env", config.DefaultEnvironment, "environment; development logs to the console")
	_ = st.v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = st.v.BindPFlag("mode", pf.Lookup("mode"))
	_ = st.v.BindPFlag("environment", pf.Lookup("env"))

	root.AddCommand(
		newServeCmd(st),
		newToolsCmd(st),
		newInvokeCmd(st),
		newDemosCmd(st),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failedText("Error:"), err)
		os.Exit(1)
	}
}
