package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"chartcore/chart"
	"chartcore/constants"
	"chartcore/model"
	"chartcore/snapshot"
	"chartcore/util"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a report",
	Long:  `Creates a report over every snapshot in the snapshot dir`,
	Run: func(cmd *cobra.Command, args []string) {
		report()
	},
}

type chartsReport struct {
	numFiles    int64
	numBytes    int64
	numEvents   int64
	numTaps     int64
	numHolds    int64
	numMines    int64
	numGimmicks int64
	tempos      []float64
}

func lanesOf(raws []model.RawEvent) int {
	lanes := 1
	for _, raw := range raws {
		if raw.Kind.IsLane() {
			lanes = util.Max(lanes, raw.Lane+1)
		}
	}
	return util.Min(lanes, constants.MaxLanes)
}

func analyzeSnapshots() chartsReport {
	var report chartsReport
	var sizes []int64

	dir := constants.GetSnapshotDir()
	files, err := os.ReadDir(dir)
	if err != nil {
		panic("Could not read dir because: " + err.Error())
	}

	r, _ := regexp.Compile("^[0-9a-fA-F]{8}-([0-9a-fA-F]{4}-){3}[0-9a-fA-F]{12}.dat$")
	for _, file := range files {
		if !r.MatchString(file.Name()) {
			continue
		}
		report.numFiles += 1
		info, err := file.Info()
		if err != nil {
			panic("Could not get file stats")
		}
		sizes = append(sizes, info.Size())

		raws := snapshot.Read(filepath.Join(dir, file.Name()))
		c, _, err := chart.FromRawEvents(lanesOf(raws), raws)
		if err != nil {
			fmt.Printf("skipping %v: %v\n", file.Name(), err)
			continue
		}
		report.numEvents += int64(len(raws))
		for _, raw := range raws {
			switch raw.Kind {
			case model.KindTap:
				report.numTaps += 1
			case model.KindHoldStart:
				report.numHolds += 1
			case model.KindMine:
				report.numMines += 1
			case model.KindStop, model.KindDelay, model.KindWarp:
				report.numGimmicks += 1
			}
		}
		report.tempos = append(report.tempos, c.MostCommonTempo())
	}
	report.numBytes = int64(util.Sum(sizes))

	return report
}

func report() {
	chartsReport := analyzeSnapshots()
	fmt.Printf("chartsReport.numFiles: %v\n", chartsReport.numFiles)
	fmt.Printf("chartsReport.numBytes: %v\n", chartsReport.numBytes)
	fmt.Printf("chartsReport.numEvents: %v\n", chartsReport.numEvents)
	fmt.Printf("chartsReport.numTaps: %v\n", chartsReport.numTaps)
	fmt.Printf("chartsReport.numHolds: %v\n", chartsReport.numHolds)
	fmt.Printf("chartsReport.numMines: %v\n", chartsReport.numMines)
	fmt.Printf("chartsReport.numGimmicks: %v\n", chartsReport.numGimmicks)
	fmt.Printf("most common tempos: %v\n", chartsReport.tempos)
}
