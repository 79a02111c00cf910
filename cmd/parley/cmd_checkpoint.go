package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samdwyer/parley/internal/save"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or clear the saved checkpoint and ledger",
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved checkpoint and carryover ledger",
	RunE:  runCheckpointShow,
}

var checkpointClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved checkpoint and carryover ledger",
	RunE:  runCheckpointClear,
}

func init() {
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointClearCmd)
}

func openStore(cmd *cobra.Command) (*save.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return save.OpenSQLite(cmd.Context(), cfg.DBPath)
}

func runCheckpointShow(cmd *cobra.Command, _ []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	cp, err := store.LoadCheckpoint(ctx)
	switch {
	case errors.Is(err, save.ErrNotFound):
		fmt.Fprintln(out, "No checkpoint saved.")
	case err != nil:
		return fmt.Errorf("load checkpoint: %w", err)
	default:
		fmt.Fprintf(out, "Case:        %s\n", cp.CaseID)
		fmt.Fprintf(out, "Checkpoint:  %s\n", cp.CheckpointID)
		fmt.Fprintf(out, "Interrupted: %v\n", cp.WasInterrupted)
		fmt.Fprintf(out, "Outcome:     %s\n", cp.LastOutcome)
		fmt.Fprintf(out, "Objective:   %s\n", cp.NextObjective)
		fmt.Fprintf(out, "Rules:       %v\n", cp.RuleTags)
		if cp.EvidenceCardID != "" {
			fmt.Fprintf(out, "Last card:   %s\n", cp.EvidenceCardID)
		}
		fmt.Fprintf(out, "Run:         %s\n", cp.RunID)
		fmt.Fprintf(out, "Saved:       %s\n", cp.SavedAt.Format("2006-01-02 15:04:05"))
	}

	snap, err := store.LoadMeta(ctx)
	switch {
	case errors.Is(err, save.ErrNotFound):
		fmt.Fprintln(out, "No ledger saved.")
	case err != nil:
		return fmt.Errorf("load ledger: %w", err)
	default:
		fmt.Fprintf(out, "Ledger:      boon=%v debt=%d passes=%d distortion=%d\n",
			snap.ContractBoon, snap.TruceDebt, snap.ArbitrationPasses, snap.Distortion)
	}
	return nil
}

func runCheckpointClear(cmd *cobra.Command, _ []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Checkpoint and ledger cleared.")
	return nil
}
