package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotFlags struct {
	label        string
	existing     string
	inventoryURL string
	subscription string
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored inventory snapshots",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Fetch the current inventory and store it under a label",
	RunE: func(cmd *cobra.Command, args []string) error {
		source := inventoryFromFlags(snapshotFlags.existing, snapshotFlags.inventoryURL, snapshotFlags.subscription)
		entries, err := source.Fetch()
		if err != nil {
			return err
		}
		if _, err := parseReservations(entries); err != nil {
			return err
		}
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		id, err := saveSnapshot(db, snapshotFlags.label, source.Name(), entries)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved snapshot %q (id %d, %d blocks)\n", snapshotFlags.label, id, len(entries))
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		snaps, err := listSnapshots(db)
		if err != nil {
			return err
		}
		for _, s := range snaps {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%d blocks\n", s.ID, s.Label, s.Source, s.TakenAt, s.Count)
		}
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show LABEL",
	Short: "Print the CIDRs stored in a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()
		entries, err := loadSnapshotEntries(db, args[0])
		if err != nil {
			return err
		}
		for _, cidr := range entries {
			fmt.Fprintln(cmd.OutOrStdout(), cidr)
		}
		return nil
	},
}

func init() {
	snapshotSaveCmd.Flags().StringVar(&snapshotFlags.label, "label", "", "snapshot label (required)")
	snapshotSaveCmd.Flags().StringVar(&snapshotFlags.existing, "existing", "", "path to a JSON or YAML file with existing CIDRs")
	snapshotSaveCmd.Flags().StringVar(&snapshotFlags.inventoryURL, "inventory-url", "", "URL returning a JSON array of existing CIDRs")
	snapshotSaveCmd.Flags().StringVar(&snapshotFlags.subscription, "subscription", "", "Azure subscription for the az query")
	_ = snapshotSaveCmd.MarkFlagRequired("label")
	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotListCmd, snapshotShowCmd)
}
