package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/storyteller/internal/frontend/handlers"
	"github.com/cory-johannsen/storyteller/internal/frontend/telnet"
	"github.com/cory-johannsen/storyteller/internal/storage"
)

func newSavesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "Inspect and delete saved games in the configured store",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List save slots with their character and timestamp",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, store storage.Store, _ []string) error {
				return listSaves(cmd, store)
			}),
		},
		&cobra.Command{
			Use:   "show SLOT",
			Short: "Print the character sheet stored in a slot",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, store storage.Store, args []string) error {
				d, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("loading slot %q: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "slot %s  id %s  state %s  saved %s\n",
					d.Slot, d.ID, d.GameState, d.Timestamp.Format(time.RFC3339))
				_, err = fmt.Fprint(cmd.OutOrStdout(), telnet.StripANSI(handlers.RenderCharacterSheet(d.Character)))
				return err
			}),
		},
		&cobra.Command{
			Use:   "delete SLOT",
			Short: "Delete the save in a slot",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, store storage.Store, args []string) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("deleting slot %q: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			}),
		},
	)
	return cmd
}

// withStore opens the configured store around fn.
func withStore(fn func(cmd *cobra.Command, store storage.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		cmd.SetContext(ctx)

		store, err := openStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
		}
		defer store.Close()
		return fn(cmd, store, args)
	}
}

func listSaves(cmd *cobra.Command, store storage.Store) error {
	slots, err := store.Slots(cmd.Context())
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no saved games")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tCHARACTER\tSTATE\tSAVED")
	for _, slot := range slots {
		d, err := store.Load(cmd.Context(), slot)
		switch {
		case errors.Is(err, storage.ErrCorruptSave):
			fmt.Fprintf(w, "%s\t(corrupt)\t-\t-\n", slot)
			continue
		case errors.Is(err, storage.ErrSaveNotFound):
			// deleted between listing and loading
			continue
		case err != nil:
			return fmt.Errorf("loading slot %q: %w", slot, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", slot, d.Character.Name, d.GameState, d.Timestamp.Format(time.RFC3339))
	}
	return w.Flush()
}

