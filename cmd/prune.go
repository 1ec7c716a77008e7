package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"chartcore/constants"
	"chartcore/snapshot"
)

func init() {
	rootCmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Deletes old snapshots",
	Long:  `Deletes old snapshots, keeping the newest few`,
	Run: func(cmd *cobra.Command, args []string) {
		keep := 10
		if len(args) == 1 {
			arg1, err := strconv.Atoi(args[0])
			if err != nil {
				panic(err)
			}
			keep = arg1
		}

		removed := snapshot.Prune(constants.GetSnapshotDir(), keep)
		fmt.Printf("Removed %v snapshots, kept the newest %v\n", removed, keep)
	},
}
