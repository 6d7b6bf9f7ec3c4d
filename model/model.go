package model

type PieceMetadata struct {
	Title      string
	Composer   string
	Collection string
	Year       uint
}
