package midi

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"chartcore/constants"
	"chartcore/model"
	"chartcore/util"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF
	var err error

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)

	if err != nil {
		errText := fmt.Sprintf("Error reading midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))

	if err != nil {
		errText := fmt.Sprintf("Error parsing midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}

	return res, nil
}

type pendingNote struct {
	row  int
	lane int
}

// laneHeld marks a lane occupied until its note off arrives.
const laneHeld = math.MaxInt

// Convert turns a standard midi file into raw chart events. Tempo and
// meter changes map to tempo and time signature events. Notes land on the
// lane their key hashes to, probing onward when it is occupied and
// dropping the note when every lane is; a note at least one beat long
// becomes a hold, anything shorter a tap.
func Convert(s *smf.SMF, lanes int) ([]model.RawEvent, error) {
	if lanes < 1 || lanes > constants.MaxLanes {
		return nil, fmt.Errorf("lanes %v, want 1..%v", lanes, constants.MaxLanes)
	}
	metric, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v, want metric ticks", s.TimeFormat)
	}
	tpq := uint64(metric.Resolution())
	if tpq == 0 {
		return nil, errors.New("midi resolution is zero")
	}

	var res []model.RawEvent
	busyUntil := make([]int, lanes)
	for i := range busyUntil {
		busyUntil[i] = -1
	}
	pressed := map[uint16]pendingNote{}

	for _, tr := range s.Tracks {
		var abs uint64
		for _, ev := range tr {
			abs += uint64(ev.Delta)
			row := int(abs * uint64(constants.RowsPerBeat) / tpq)

			var bpm float64
			var num, den uint8
			var ch, key, vel uint8
			msg := ev.Message
			switch {
			case msg.GetMetaTempo(&bpm):
				res = append(res, model.RawEvent{Kind: model.KindTempo, Row: row, BPM: bpm})
			case msg.GetMetaMeter(&num, &den):
				res = append(res, model.RawEvent{
					Kind:        model.KindTimeSignature,
					Row:         row,
					Numerator:   int(num),
					Denominator: int(den),
				})
			case msg.GetNoteStart(&ch, &key, &vel):
				lane := -1
				for i := 0; i < lanes; i++ {
					cand := (int(key) + i) % lanes
					if busyUntil[cand] < row {
						lane = cand
						break
					}
				}
				if lane == -1 {
					continue
				}
				pressed[uint16(ch)<<8|uint16(key)] = pendingNote{row: row, lane: lane}
				busyUntil[lane] = laneHeld
			case msg.GetNoteEnd(&ch, &key):
				id := uint16(ch)<<8 | uint16(key)
				p, held := pressed[id]
				if !held {
					continue
				}
				delete(pressed, id)
				if row-p.row >= constants.RowsPerBeat {
					res = append(res,
						model.RawEvent{Kind: model.KindHoldStart, Row: p.row, Lane: p.lane},
						model.RawEvent{Kind: model.KindHoldEnd, Row: row, Lane: p.lane})
					busyUntil[p.lane] = row
				} else {
					res = append(res, model.RawEvent{Kind: model.KindTap, Row: p.row, Lane: p.lane})
					busyUntil[p.lane] = p.row
				}
			}
		}
	}

	// notes the file never closed come out as taps, in key order so the
	// result is stable
	ids := util.GetKeys(pressed)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p := pressed[id]
		res = append(res, model.RawEvent{Kind: model.KindTap, Row: p.row, Lane: p.lane})
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Row < res[j].Row
	})
	return res, nil
}

// ConvertFile reads a midi file and converts it in one go.
func ConvertFile(filepath string, lanes int) ([]model.RawEvent, error) {
	s, err := ReadMidiFile(filepath)
	if err != nil {
		return nil, err
	}
	return Convert(s, lanes)
}
