package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassesReducesAndSorts(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(ClassSet{0, 4, 7}, Classes([]uint8{60, 64, 67, 72}))
	assert.Equal(ClassSet{0, 4, 5, 11}, Classes([]uint8{60, 64, 65, 71}))
	assert.Equal(ClassSet(nil), Classes(nil))
}

func TestClassSetKey(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("0-4-7", Classes([]uint8{60, 64, 67}).Key())
	assert.Equal("0", Classes([]uint8{60, 72}).Key())
	assert.Equal("", ClassSet{}.Key())
}

func TestClassSetLess(t *testing.T) {
	assert := assert.New(t)
	assert.True(ClassSet{0, 3, 7}.Less(ClassSet{0, 4, 7}))
	assert.True(ClassSet{0, 4, 7}.Less(ClassSet{0, 4, 7, 11}))
	assert.False(ClassSet{0, 4, 7}.Less(ClassSet{0, 4, 7}))
}

func TestIntervalClasses(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]uint8{3, 4, 5}, IntervalClasses([]uint8{60, 64, 67}))
	assert.Equal([]uint8{0}, IntervalClasses([]uint8{60, 72}))
}

func TestIsConsonant(t *testing.T) {
	cases := []struct {
		name     string
		pitches  []uint8
		expected bool
	}{
		{"empty", nil, true},
		{"single note", []uint8{60}, true},
		{"octaves", []uint8{48, 60, 72}, true},
		{"major third", []uint8{60, 64}, true},
		{"perfect fifth", []uint8{60, 67}, true},
		{"perfect fourth above bass", []uint8{60, 65}, false},
		{"fourth inverted to fifth", []uint8{53, 60}, true},
		{"major second", []uint8{60, 62}, false},
		{"major triad", []uint8{60, 64, 67}, true},
		{"minor triad", []uint8{60, 63, 67}, true},
		{"first inversion triad", []uint8{64, 67, 72}, true},
		{"diminished triad", []uint8{60, 63, 66}, false},
		{"four distinct classes", []uint8{60, 64, 65, 71}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, IsConsonant(c.pitches))
		})
	}
}

func TestSetHelpers(t *testing.T) {
	assert := assert.New(t)
	assert.True(Equal([]uint8{67, 60, 60}, []uint8{60, 67}))
	assert.False(Equal([]uint8{60}, []uint8{60, 67}))
	assert.True(Subset([]uint8{60}, []uint8{60, 64, 67}))
	assert.False(Subset([]uint8{60, 65}, []uint8{60, 64, 67}))
	assert.Equal([]uint8{60, 64, 67}, Union([]uint8{60, 67}, []uint8{64, 60}))
}
