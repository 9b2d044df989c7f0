package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aitools/aitools/internal/tools"
)

func newInvokeCmd(st *state) *cobra.Command {
	var (
		rawArgs string
		demo    bool
	)
	cmd := &cobra.Command{
		Use:   "invoke <name>",
		Short: "Invoke a tool once and print the result",
		Example: `  aitools invoke calculator --args '{"a":7,"b":3,"operator":"+"}'
  aitools invoke weather --args '{"location":"Paris"}' --demo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arguments map[string]any
			if rawArgs != "" {
				if err := json.Unmarshal([]byte(rawArgs), &arguments); err != nil {
					return fmt.Errorf("--args must be a JSON object: %w", err)
				}
			}

			app, err := st.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			mode := app.Mode
			if demo {
				mode = tools.ModeDemo
			}
			inv := tools.NewInvocation(args[0], arguments, mode)
			inv.Caller = "cli"
			res := app.Registry.Invoke(cmd.Context(), inv)

			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Error != nil {
				return res.Error
			}
			if res.Fallback {
				fmt.Fprintln(cmd.ErrOrStderr(), warnText("upstream unavailable, showing fallback output"))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&rawArgs, "args", "a", "", "tool arguments as a JSON object")
	cmd.Flags().BoolVar(&demo, "demo", false, "invoke in demo mode (fallback tools never fail on upstream errors)")
	return cmd
}
