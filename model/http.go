package model

import "github.com/jsphweid/chordreduce/score"

type ReduceRequestBody struct {
	Score     score.Score `json:"score"`
	MaxChords int         `json:"max_chords,omitempty"`
	TrimBelow float64     `json:"trim_below,omitempty"`
	Weight    string      `json:"weight,omitempty"`
}

type ReduceResponse struct {
	Id         string       `json:"id"`
	Partwise   []score.Part `json:"partwise"`
	Chordified score.Part   `json:"chordified"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
