package main

import "github.com/jsphweid/chordreduce/cmd"

func main() {
	cmd.Execute()
}
