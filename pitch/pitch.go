package pitch

import (
	"fmt"
	"sort"
)

// Pitches are MIDI key numbers. A pitch class is a key reduced mod 12,
// so 0 is C, 4 is E, 7 is G and so on.

// ClassSet is a sorted, de-duplicated set of pitch classes.
type ClassSet []uint8

// Classes reduces pitches to their pitch-class set.
func Classes(pitches []uint8) ClassSet {
	seen := make(map[uint8]bool)
	var res ClassSet
	for _, p := range pitches {
		pc := p % 12
		if !seen[pc] {
			seen[pc] = true
			res = append(res, pc)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i] < res[j]
	})
	return res
}

// Key renders the set as a canonical string, usable as a map key.
func (cs ClassSet) Key() string {
	var res string
	for i, pc := range cs {
		res += fmt.Sprintf("%v", pc)
		if i < len(cs)-1 {
			res += "-"
		}
	}
	return res
}

// Less orders class sets element-wise, shorter sets first on a shared
// prefix. Used to break ranking ties deterministically.
func (cs ClassSet) Less(other ClassSet) bool {
	for i := 0; i < len(cs) && i < len(other); i++ {
		if cs[i] != other[i] {
			return cs[i] < other[i]
		}
	}
	return len(cs) < len(other)
}

func (cs ClassSet) Equal(other ClassSet) bool {
	if len(cs) != len(other) {
		return false
	}
	for i := range cs {
		if cs[i] != other[i] {
			return false
		}
	}
	return true
}

// Sorted returns the distinct pitches in ascending order.
func Sorted(pitches []uint8) []uint8 {
	seen := make(map[uint8]bool)
	var res []uint8
	for _, p := range pitches {
		if !seen[p] {
			seen[p] = true
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i] < res[j]
	})
	return res
}

// Equal reports whether two pitch collections contain the same pitches.
func Equal(a, b []uint8) bool {
	as, bs := Sorted(a), Sorted(b)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// Subset reports whether every pitch of a also occurs in b.
func Subset(a, b []uint8) bool {
	in := make(map[uint8]bool)
	for _, p := range b {
		in[p] = true
	}
	for _, p := range a {
		if !in[p] {
			return false
		}
	}
	return true
}

// Union merges two pitch collections into one sorted distinct slice.
func Union(a, b []uint8) []uint8 {
	merged := make([]uint8, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return Sorted(merged)
}

// IntervalClasses returns the set of interval classes (0..6) formed by
// every pair of pitches.
func IntervalClasses(pitches []uint8) []uint8 {
	ps := Sorted(pitches)
	seen := make(map[uint8]bool)
	var res []uint8
	for i, x := range ps {
		for _, y := range ps[i+1:] {
			interval := uint8(int(y)-int(x)) % 12
			if interval > 6 {
				interval = 12 - interval
			}
			if !seen[interval] {
				seen[interval] = true
				res = append(res, interval)
			}
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i] < res[j]
	})
	return res
}

// consonant two-note intervals in semitones mod 12: unison/octave,
// minor/major thirds, perfect fifth, minor/major sixths. The perfect
// fourth counts as dissonant, per common-practice rules.
var consonantDyads = map[uint8]bool{
	0: true, 3: true, 4: true, 7: true, 8: true, 9: true,
}

// IsConsonant classifies a pitch collection as harmonically stable.
// Empty sets and single pitch classes are consonant. Two classes are
// judged as the interval above the actual lowest pitch, so a fourth
// is dissonant but its fifth inversion is not. Three classes are
// consonant only as a major or minor triad, any inversion. Anything
// denser is dissonant.
func IsConsonant(pitches []uint8) bool {
	cs := Classes(pitches)
	switch len(cs) {
	case 0, 1:
		return true
	case 2:
		ps := Sorted(pitches)
		bass := ps[0]
		for _, p := range ps[1:] {
			if p%12 != bass%12 {
				return consonantDyads[(p-bass)%12]
			}
		}
		return true
	case 3:
		return isTriad(cs)
	default:
		return false
	}
}

func isTriad(cs ClassSet) bool {
	// try each rotation as the root
	for i := 0; i < 3; i++ {
		root := cs[i]
		third := (cs[(i+1)%3] + 12 - root) % 12
		fifth := (cs[(i+2)%3] + 12 - root) % 12
		if third > fifth {
			third, fifth = fifth, third
		}
		if fifth == 7 && (third == 3 || third == 4) {
			return true
		}
	}
	return false
}
