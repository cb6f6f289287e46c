package main

import "github.com/spf13/cobra"

var (
	migrationFolder string
)

var rootCmd = &cobra.Command{
	Use:   "pitch-viewer",
	Short: "Serve pitch analysis results.",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)

	rootCmd.PersistentFlags().StringVarP(&migrationFolder, "migrations", "m", "", "Folder of SQL migrations, the embedded ones are used when empty")
}
