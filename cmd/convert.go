package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"chartcore/chart"
	"chartcore/constants"
	"chartcore/midi"
	"chartcore/snapshot"
	"chartcore/util"
)

func init() {
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Converts midi into chart snapshots",
	Long:  `Converts a midi file, or every midi file under a directory, into chart snapshots.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			panic("Need a midi file or directory...")
		}
		lanes := constants.DefaultLanes
		if len(args) == 2 {
			arg1, err := strconv.Atoi(args[1])
			if err != nil {
				panic(err)
			}
			lanes = arg1
		}

		info, err := os.Stat(args[0])
		if err != nil {
			panic("Could not stat path: " + err.Error())
		}
		if info.IsDir() {
			for _, p := range util.GatherAllMidiPaths(args[0], 0) {
				out := Convert(p, lanes)
				fmt.Printf("%v -> %v\n", p, out)
			}
			return
		}
		out := Convert(args[0], lanes)
		fmt.Printf("%v -> %v\n", args[0], out)
	},
}

// Convert turns one midi file into a chart snapshot and returns the
// snapshot path. The chart round trip normalizes the events: defaults
// are seeded, holds paired and stray time signatures cleaned out.
func Convert(path string, lanes int) string {
	raws, err := midi.ConvertFile(path, lanes)
	if err != nil {
		panic("Could not convert midi file: " + err.Error())
	}
	c, _, err := chart.FromRawEvents(lanes, raws)
	if err != nil {
		panic("Could not build chart: " + err.Error())
	}
	return snapshot.Create(constants.GetSnapshotDir(), c.RawEvents())
}
