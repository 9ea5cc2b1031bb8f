package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage"
	"github.com/spf13/cobra"
)

var (
	dbPath      string
	storageKind string
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load and validate a snapshot without starting a node",
	RunE: func(cmd *cobra.Command, args []string) error {

		// Opening storage creates missing paths, inspect never should.
		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("snapshot %s: %w", dbPath, err)
		}

		strg, err := storage.Open(storageKind, dbPath)
		if err != nil {
			return err
		}
		defer strg.Close()

		ledger, err := strg.Read()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "blocks:     %d\n", len(ledger.Chain))
		fmt.Fprintf(out, "difficulty: %d\n", ledger.Difficulty)
		fmt.Fprintf(out, "pool:       %d\n", len(ledger.Pool))

		if latest, err := ledger.LatestBlock(); err == nil {
			fmt.Fprintf(out, "latest:     %d %s\n", latest.Header.Index, latest.Header.Hash)
		}

		if err := ledger.Validate(); err != nil {
			return &database.PersistenceError{Op: "validate", Path: dbPath, Err: err}
		}
		fmt.Fprintln(out, "valid:      true")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&dbPath, "db", "d", "chain.bin", "Path to the snapshot.")
	inspectCmd.Flags().StringVarP(&storageKind, "storage", "s", storage.Disk, "Storage holding the snapshot: disk or leveldb.")
}
