package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/chordreduce/constants"
	"github.com/jsphweid/chordreduce/db"
	"github.com/jsphweid/chordreduce/midi"
	"github.com/jsphweid/chordreduce/reduce"
	"github.com/spf13/cobra"
)

var (
	reduceMaxChords int
	reduceTrimBelow float64
	reduceWeight    string
	reduceOutDir    string
	reduceMetadata  bool
)

func init() {
	reduceCmd.Flags().IntVar(&reduceMaxChords, "chords", constants.DefaultMaxChords,
		"max chords kept per measure")
	reduceCmd.Flags().Float64Var(&reduceTrimBelow, "trim", constants.DefaultTrimBelow,
		"drop chords weighted below this fraction of the top weight")
	reduceCmd.Flags().StringVar(&reduceWeight, "weight", "consonance",
		"weight strategy: duration, duration-beat-strength, duration-beat-strength-final, consonance")
	reduceCmd.Flags().StringVar(&reduceOutDir, "out", constants.GetOutDir(),
		"output directory")
	reduceCmd.Flags().BoolVar(&reduceMetadata, "metadata", false,
		"look up piece metadata for the report")
	rootCmd.AddCommand(reduceCmd)
}

var reduceCmd = &cobra.Command{
	Use:   "reduce [midi file]",
	Short: "Reduces a midi file",
	Long:  `Reduces a midi file`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		Reduce(args[0])
	},
}

func Reduce(path string) {
	sc, err := midi.ReadScore(path)
	if err != nil {
		fmt.Printf("Skipping %v because: %v\n", path, err)
		return
	}

	weight, err := reduce.WeightByName(reduceWeight)
	if err != nil {
		fmt.Println(err.Error())
		return
	}
	reducer := reduce.NewReducer()
	reducer.MaxChords = reduceMaxChords
	reducer.TrimBelow = reduceTrimBelow
	reducer.Weight = weight

	reduction, err := reducer.Reduce(sc)
	if err != nil {
		fmt.Printf("Could not reduce %v because: %v\n", path, err)
		return
	}

	if reduceMetadata {
		filename := filepath.Base(path)
		metadatas := db.GetPieceMetadatas([]string{filename})
		if m, ok := metadatas[filename]; ok {
			fmt.Printf("%v - %v (%v, %v)\n", m.Composer, m.Title, m.Collection, m.Year)
		}
	}

	chordified := reduction.Parts[len(reduction.Parts)-1]
	var numChords int
	for _, m := range chordified.Measures {
		var chords []string
		for _, ev := range m.Events {
			if !ev.IsRest() {
				chords = append(chords, fmt.Sprintf("%v", ev.Pitches))
				numChords++
			}
		}
		fmt.Printf("measure %v: %v\n", m.Number, strings.Join(chords, " "))
	}
	fmt.Printf("%v measures reduced to %v chords\n", len(chordified.Measures), numChords)

	if err := os.MkdirAll(reduceOutDir, 0777); err != nil {
		panic("Could not create output dir: " + err.Error())
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(reduceOutDir, base+".reduced.mid")
	if err := midi.WriteScore(reduction, outPath); err != nil {
		panic("Write failed for reduction file: " + err.Error())
	}
	fmt.Printf("Wrote %v\n", outPath)
}
