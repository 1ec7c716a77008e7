package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"chartcore/model"
	"chartcore/snapshot"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspects a snapshot",
	Long:  `Inspects a snapshot`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		inspect(args[0])
	},
}

func inspect(path string) {
	raws := snapshot.Read(path)
	fmt.Printf("events: %v\n", len(raws))
	for _, raw := range raws {
		fmt.Printf("row %6d  %-18v %v\n", raw.Row, raw.Kind, payloadString(raw))
	}
}

func payloadString(raw model.RawEvent) string {
	switch raw.Kind {
	case model.KindTempo:
		return fmt.Sprintf("%g bpm", raw.BPM)
	case model.KindStop, model.KindDelay:
		return fmt.Sprintf("%.3fs", raw.Seconds)
	case model.KindWarp, model.KindFakeRegion, model.KindPattern:
		return fmt.Sprintf("%v rows", raw.LengthRows)
	case model.KindTimeSignature:
		return fmt.Sprintf("%v/%v", raw.Numerator, raw.Denominator)
	case model.KindScrollRate:
		return fmt.Sprintf("%gx", raw.Rate)
	case model.KindInterpolatedRate:
		return raw.Text
	case model.KindTickCount:
		return fmt.Sprintf("%v ticks", raw.Ticks)
	case model.KindMultipliers:
		return fmt.Sprintf("%vx/%vx", raw.HitMult, raw.MissMult)
	case model.KindLabel:
		return raw.Text
	case model.KindPreview:
		return fmt.Sprintf("%.3fs +%.3fs", raw.StartSeconds, raw.Seconds)
	case model.KindTap, model.KindMine:
		return fmt.Sprintf("lane %v", raw.Lane)
	case model.KindHoldStart:
		if raw.IsRoll {
			return fmt.Sprintf("lane %v roll", raw.Lane)
		}
		return fmt.Sprintf("lane %v hold", raw.Lane)
	case model.KindHoldEnd:
		return fmt.Sprintf("lane %v end", raw.Lane)
	}
	return ""
}
