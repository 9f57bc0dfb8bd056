package main

import (
	"database/sql"
	"os"
	"strings"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "vnetplan",
	Short: "Plan non-overlapping VNet and subnet address ranges",
	Long: `vnetplan finds a free IPv4 block for a virtual network among the
address spaces already reserved in an account, packs the requested
subnets into it and prints values suitable for provisioning templates.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(planCmd, serveCmd, snapshotCmd)
}

func mustEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func openStore() (*sql.DB, error) {
	dbPath := mustEnv("DB_PATH", "./vnetplan.sqlite")
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
