package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chordreduce",
	Short: "Reduces scores to their harmonic skeleton",
	Long:  `Reduces multi-part scores to a handful of representative chords per measure.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
