package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phrasesync/internal/api"
	"phrasesync/internal/library"
	"phrasesync/internal/timeline"
)

func newTimelineCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "timeline [script]",
		Short: "Print the interleaved phrase timeline for a script",
		Long: `Resolve a script by library name or id, file path, or script directory name
and print its phrase timeline. Unknown scripts fall back to the configured
default script.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := ""
			if len(args) > 0 {
				identifier = args[0]
			}
			return ctx.withLibrary(func(store *library.Store) error {
				resolver, err := ctx.resolver(store)
				if err != nil {
					return err
				}
				resolved, err := resolver.Resolve(cmd.Context(), identifier)
				if err != nil {
					return err
				}
				payload := api.FromTimeline(resolved.Name, timeline.Build(resolved.Script))
				if asJSON {
					return writeJSON(cmd, payload)
				}

				out := cmd.OutOrStdout()
				if resolved.Fallback {
					fmt.Fprintf(out, "Script %q not found; showing %s\n", identifier, resolved.Name)
				}
				fmt.Fprintln(out, renderTimelineTable(payload))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
