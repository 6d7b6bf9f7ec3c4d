package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/chordreduce/pitch"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

func init() {
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Classifies live midi input",
	Long:  `Listens to a midi input port and prints the pitch-class set and consonance of whatever is held.`,
	Run: func(cmd *cobra.Command, args []string) {
		listen()
	},
}

func listen() {
	defer midi.CloseDriver()
	in, err := midi.InPort(0)
	if err != nil {
		fmt.Println("can't find a midi input")
		return
	}

	held := make(map[uint8]bool)
	deb := debounce.New(150 * time.Millisecond)
	readout := func() {
		notes := make([]uint8, 0, len(held))
		for key := range held {
			notes = append(notes, key)
		}
		if len(notes) == 0 {
			return
		}
		sort.Slice(notes, func(i, j int) bool {
			return notes[i] < notes[j]
		})
		verdict := "dissonant"
		if pitch.IsConsonant(notes) {
			verdict = "consonant"
		}
		fmt.Printf("notes=%v classes=%v %v\n", notes, pitch.Classes(notes).Key(), verdict)
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			held[key] = true
			deb(readout)
		case msg.GetNoteEnd(&ch, &key):
			delete(held, key)
			deb(readout)
		default:
			// ignore
		}
	})
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return
	}

	time.Sleep(time.Second * 5000) // lol
	stop()
}
