package reduce

import (
	"github.com/jsphweid/chordreduce/constants"
	"github.com/jsphweid/chordreduce/score"
	"github.com/jsphweid/chordreduce/tree"
)

// Reducer runs the full reduction: flatten the score into an offset
// tree, run the structural passes in order, project back out, and
// collapse the chordified projection measure by measure.
type Reducer struct {
	MaxChords     int
	TrimBelow     float64
	ShortDuration float64
	Weight        WeightFunc
}

func NewReducer() *Reducer {
	return &Reducer{
		MaxChords:     constants.DefaultMaxChords,
		TrimBelow:     constants.DefaultTrimBelow,
		ShortDuration: constants.DefaultShortDuration,
		Weight:        WeightConsonance,
	}
}

// Pipeline runs the default pass sequence on a flattened tree. The
// order is fixed: later passes assume the invariants the earlier ones
// establish, and bass gaps are refilled after short-timespan pruning
// opens new ones.
func (r *Reducer) Pipeline(t *tree.Tree) {
	RemoveVerticalDissonances(t)
	FillBassGaps(t)
	RemoveShortTimespans(t, r.ShortDuration)
	FillBassGaps(t)
	FillOuterMeasureGaps(t)
	AlignHockets(t)
	FillInnerMeasureGaps(t)
}

// Reduce produces the reduction of s: the cleaned-up partwise texture
// with the collapsed chordified part appended last, ties applied to
// every part. Either the whole pipeline completes or an error is
// returned with no partial output.
func (r *Reducer) Reduce(s *score.Score) (*score.Score, error) {
	t, err := score.Flatten(s)
	if err != nil {
		return nil, err
	}
	r.Pipeline(t)

	partwise, err := score.Partwise(t, s)
	if err != nil {
		return nil, err
	}
	chordified, err := score.Chordified(t, s)
	if err != nil {
		return nil, err
	}

	collapsed := score.Part{Name: chordified.Name}
	for _, m := range chordified.Measures {
		collapsed.Measures = append(collapsed.Measures,
			CollapseMeasure(m, r.MaxChords, r.Weight, r.TrimBelow))
	}
	partwise.Parts = append(partwise.Parts, collapsed)

	for i := range partwise.Parts {
		score.ApplyTies(&partwise.Parts[i])
	}
	return partwise, nil
}
