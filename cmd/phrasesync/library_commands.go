package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"phrasesync/internal/api"
	"phrasesync/internal/fileutil"
	"phrasesync/internal/library"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the script catalog",
	}

	libraryCmd.AddCommand(newLibraryAddCommand(ctx))
	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	libraryCmd.AddCommand(newLibraryRemoveCommand(ctx))

	return libraryCmd
}

func newLibraryAddCommand(ctx *commandContext) *cobra.Command {
	var copyFiles bool

	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Register script files in the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(store *library.Store) error {
				out := cmd.OutOrStdout()
				for _, path := range args {
					if copyFiles {
						imported, err := fileutil.ImportInto(path, cfg.Paths.ScriptDir)
						if err != nil {
							return err
						}
						path = imported
					}
					result, err := store.Add(cmd.Context(), path)
					if err != nil {
						return fmt.Errorf("add %s: %w", path, err)
					}
					entry := result.Entry
					switch {
					case result.Duplicate:
						fmt.Fprintf(out, "Already catalogued as %q (id %d)\n", entry.Name, entry.ID)
					case result.Replaced:
						fmt.Fprintf(out, "Updated %q (id %d): %d phrases, %s\n", entry.Name, entry.ID, entry.PhraseCount, api.FromEntry(entry).Total)
					default:
						fmt.Fprintf(out, "Added %q (id %d): %d phrases, %s\n", entry.Name, entry.ID, entry.PhraseCount, api.FromEntry(entry).Total)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&copyFiles, "copy", false, "Copy files into paths.script_dir before registering them")
	return cmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalogued scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				scripts := api.FromEntries(entries)
				if asJSON {
					return writeJSON(cmd, api.ScriptListResponse{Scripts: scripts})
				}
				out := cmd.OutOrStdout()
				if len(scripts) == 0 {
					fmt.Fprintln(out, "Library is empty")
					return nil
				}
				fmt.Fprintln(out, renderScriptTable(scripts))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newLibraryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name|id>...",
		Aliases: []string{"rm"},
		Short:   "Remove scripts from the catalog",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				out := cmd.OutOrStdout()
				for _, identifier := range args {
					entry, ok, err := store.Resolve(cmd.Context(), identifier)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("script %q is not in the library", identifier)
					}
					if err := store.Remove(cmd.Context(), entry.ID); err != nil {
						return err
					}
					fmt.Fprintf(out, "Removed %q (id %s)\n", entry.Name, strconv.FormatInt(entry.ID, 10))
				}
				return nil
			})
		},
	}
}
