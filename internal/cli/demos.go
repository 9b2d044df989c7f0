package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDemosCmd(st *state) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "demos",
		Short: "Render every demo card concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			cards := app.Demos.Render(cmd.Context())
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, cards)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOOL\tSTATUS\tDURATION\tDETAIL")
			for _, c := range cards {
				status, detail := successText("ok"), ""
				switch {
				case c.Error != "":
					status, detail = failedText(string(c.ErrorKind)), c.Error
				case c.Fallback:
					status, detail = warnText("fallback"), "upstream unavailable"
				}
				fmt.Fprintf(tw, "%s\t%s\t%dms\t%s\n", c.Tool, status, c.DurationMs, detail)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print cards as JSON")
	return cmd
}
