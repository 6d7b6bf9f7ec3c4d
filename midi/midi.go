package midi

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/chordreduce/score"
)

const writeResolution = 960

func readSMF(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

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

type noteEvent struct {
	tick      int64
	isNoteOff bool
	note      uint8
}

type meterEvent struct {
	tick        int64
	numerator   int
	denominator int
}

// ReadScore parses an SMF file into a score: one part per track that
// holds notes, with simultaneously held notes merged into chord
// events at every note boundary, and measures laid out from the
// file's time signatures (4/4 when it has none).
func ReadScore(filepath string) (*score.Score, error) {
	parsed, err := readSMF(filepath)
	if err != nil {
		return nil, err
	}
	ticks, ok := parsed.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format: %v", parsed.TimeFormat)
	}
	quarters := func(tick int64) float64 {
		return float64(tick) / float64(ticks.Resolution())
	}

	var meters []meterEvent
	var trackEvents [][]score.Event
	maxStop := 0.0
	for _, track := range parsed.Tracks {
		var absTicks int64
		var notes []noteEvent
		for _, event := range track {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			var num, denom uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				notes = append(notes, noteEvent{tick: absTicks, isNoteOff: false, note: key})
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				notes = append(notes, noteEvent{tick: absTicks, isNoteOff: true, note: key})
			case event.Message.GetMetaMeter(&num, &denom):
				meters = append(meters, meterEvent{
					tick:        absTicks,
					numerator:   int(num),
					denominator: int(denom),
				})
			}
		}
		events := segmentNotes(notes, quarters)
		if len(events) == 0 {
			continue
		}
		trackEvents = append(trackEvents, events)
		stop := events[len(events)-1].Stop()
		if stop > maxStop {
			maxStop = stop
		}
	}
	if len(trackEvents) == 0 {
		return nil, errors.New("midi file contains no notes")
	}

	mm := layoutMeasures(meters, quarters, maxStop)
	res := &score.Score{}
	for i, events := range trackEvents {
		part := score.Part{Name: fmt.Sprintf("track-%v", i+1)}
		for _, span := range mm {
			m := score.Measure{
				Number:      span.Number,
				Start:       span.Start,
				Stop:        span.Stop,
				Numerator:   span.Numerator,
				Denominator: span.Denominator,
			}
			for _, ev := range events {
				if span.Start <= ev.Offset && ev.Offset < span.Stop {
					m.Events = append(m.Events, ev)
				}
			}
			part.Measures = append(part.Measures, m)
		}
		res.Parts = append(res.Parts, part)
	}
	return res, nil
}

// segmentNotes turns a track's raw on/off events into a sequence of
// non-overlapping chord events: one event per stretch of time with a
// stable set of held notes.
func segmentNotes(notes []noteEvent, quarters func(int64) float64) []score.Event {
	// prioritize smaller offset values then note off
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].tick != notes[j].tick {
			return notes[i].tick < notes[j].tick
		}
		return notes[i].isNoteOff && !notes[j].isNoteOff
	})

	var res []score.Event
	pressed := make(map[uint8]bool)
	var lastTick int64
	flush := func(tick int64) {
		if tick > lastTick && len(pressed) > 0 {
			var pitches []uint8
			for note := range pressed {
				pitches = append(pitches, note)
			}
			sort.Slice(pitches, func(i, j int) bool {
				return pitches[i] < pitches[j]
			})
			res = append(res, score.Event{
				Offset:   quarters(lastTick),
				Duration: quarters(tick) - quarters(lastTick),
				Pitches:  pitches,
			})
		}
		lastTick = tick
	}
	for _, evt := range notes {
		flush(evt.tick)
		if evt.isNoteOff {
			delete(pressed, evt.note)
		} else {
			pressed[evt.note] = true
		}
	}
	return res
}

// layoutMeasures builds the measure map from the file's time
// signature changes, defaulting to 4/4.
func layoutMeasures(meters []meterEvent, quarters func(int64) float64, stop float64) score.MeasureMap {
	type change struct {
		offset      float64
		numerator   int
		denominator int
	}
	changes := []change{{0, 4, 4}}
	sort.SliceStable(meters, func(i, j int) bool {
		return meters[i].tick < meters[j].tick
	})
	for _, m := range meters {
		if m.numerator <= 0 || m.denominator <= 0 {
			continue
		}
		c := change{quarters(m.tick), m.numerator, m.denominator}
		if c.offset == 0 {
			changes[0] = c
		} else {
			changes = append(changes, c)
		}
	}

	var mm score.MeasureMap
	cursor := 0.0
	number := 1
	active := 0
	for cursor < stop {
		// take the last signature change at or before the cursor
		for active+1 < len(changes) && changes[active+1].offset <= cursor {
			active++
		}
		c := changes[active]
		length := float64(c.numerator) * 4.0 / float64(c.denominator)
		mm = append(mm, score.MeasureSpan{
			Number:      number,
			Start:       cursor,
			Stop:        cursor + length,
			Numerator:   c.numerator,
			Denominator: c.denominator,
		})
		cursor += length
		number++
	}
	return mm
}

// WriteScore renders a score back to an SMF file, one track per
// part. Rests advance time without emitting messages.
func WriteScore(s *score.Score, filepath string) error {
	var res smf.SMF
	res.TimeFormat = smf.MetricTicks(writeResolution)

	tick := func(offset float64) int64 {
		return int64(math.Round(offset * writeResolution))
	}
	for _, part := range s.Parts {
		var track smf.Track
		var absTicks int64
		add := func(at int64, msg smf.Message) {
			track = append(track, smf.Event{Delta: uint32(at - absTicks), Message: msg})
			absTicks = at
		}
		prevNum, prevDenom := 0, 0
		for _, m := range part.Measures {
			if m.Numerator != prevNum || m.Denominator != prevDenom {
				add(tick(m.Start), smf.MetaMeter(uint8(m.Numerator), uint8(m.Denominator)))
				prevNum, prevDenom = m.Numerator, m.Denominator
			}
			for _, ev := range m.Events {
				if ev.IsRest() {
					continue
				}
				for _, p := range ev.Pitches {
					add(tick(ev.Offset), smf.Message(midi.NoteOn(0, p, 64)))
				}
				for _, p := range ev.Pitches {
					add(tick(ev.Stop()), smf.Message(midi.NoteOff(0, p)))
				}
			}
		}
		track.Close(0)
		res.Tracks = append(res.Tracks, track)
	}
	return res.WriteFile(filepath)
}
