package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chartcore",
	Short: "Chart timing toolbox",
	Long:  `Converts midi files into chart snapshots and inspects or summarizes them.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
