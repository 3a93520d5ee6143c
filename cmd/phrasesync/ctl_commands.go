package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"phrasesync/internal/api"
)

func newCtlCommand(ctx *commandContext) *cobra.Command {
	ctlCmd := &cobra.Command{
		Use:   "ctl",
		Short: "Control a running daemon over its HTTP API",
	}

	ctlCmd.AddCommand(newCtlStatusCommand(ctx))
	ctlCmd.AddCommand(newCtlStartCommand(ctx))
	ctlCmd.AddCommand(newCtlEndCommand(ctx))
	ctlCmd.AddCommand(newCtlTimelineCommand(ctx))
	for _, action := range api.Actions {
		ctlCmd.AddCommand(newCtlActionCommand(ctx, action))
	}
	ctlCmd.AddCommand(newCtlIndexCommand(ctx, "seek", "Jump to the start of a phrase", (*api.Client).Seek))
	ctlCmd.AddCommand(newCtlIndexCommand(ctx, "repeat", "Replay one phrase at the reduced rate", (*api.Client).Repeat))

	return ctlCmd
}

var actionDescriptions = map[string]string{
	api.ActionToggle:     "Toggle play/pause (restarts after the end)",
	api.ActionPlay:       "Resume playback",
	api.ActionPause:      "Pause playback",
	api.ActionStop:       "Pause and rewind to the beginning",
	api.ActionRestart:    "Rewind and play from the beginning",
	api.ActionNext:       "Jump to the next phrase",
	api.ActionPrevious:   "Jump to the previous phrase",
	api.ActionRepeatLast: "Repeat the current phrase at the reduced rate",
}

func newCtlStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and session status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withClient(func(client *api.Client) error {
				status, err := client.Status(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, status)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				lines := renderSectionHeader("Daemon", colorize)
				running := statusWarn
				if status.Running {
					running = statusOK
				}
				lines = append(lines,
					renderStatusLine("Running", running, fmt.Sprintf("%s (pid %d)", yesNo(status.Running), status.PID), colorize),
					renderStatusLine("Library", statusInfo, status.LibraryPath, colorize),
					renderStatusLine("Scripts", statusInfo, status.ScriptDir, colorize),
				)
				if status.Session == nil {
					lines = append(lines, renderStatusLine("Session", statusInfo, "none", colorize))
				} else {
					lines = append(lines, "")
					lines = append(lines, renderSession(*status.Session, colorize)...)
				}
				fmt.Fprintln(out, strings.Join(lines, "\n"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newCtlStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start [script]",
		Short: "Activate a script, replacing the current session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := ""
			if len(args) > 0 {
				identifier = args[0]
			}
			return ctx.withClient(func(client *api.Client) error {
				session, err := client.StartSession(cmd.Context(), identifier)
				if err != nil {
					return err
				}
				return printSession(cmd, session)
			})
		},
	}
}

func newCtlEndCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "End the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withClient(func(client *api.Client) error {
				if err := client.EndSession(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session ended")
				return nil
			})
		},
	}
}

func newCtlTimelineCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the active session's timeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withClient(func(client *api.Client) error {
				tl, err := client.Timeline(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, tl)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTimelineTable(tl))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newCtlActionCommand(ctx *commandContext, action string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: actionDescriptions[action],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withClient(func(client *api.Client) error {
				session, err := client.Action(cmd.Context(), action)
				if err != nil {
					return err
				}
				return printSession(cmd, session)
			})
		},
	}
}

type indexCall func(*api.Client, context.Context, int) (api.Session, error)

func newCtlIndexCommand(ctx *commandContext, use, short string, call indexCall) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <index>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil || index < 0 {
				return fmt.Errorf("invalid phrase index %q", args[0])
			}
			return ctx.withClient(func(client *api.Client) error {
				session, err := call(client, cmd.Context(), index)
				if err != nil {
					return err
				}
				return printSession(cmd, session)
			})
		},
	}
}

func printSession(cmd *cobra.Command, session api.Session) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, strings.Join(renderSession(session, shouldColorize(out)), "\n"))
	return nil
}
