package roster

import (
	"fmt"
	"math"
	"time"
	"unicode/utf16"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DailyTarget returns the character of the day for dateKey.
//
// The key is folded into a signed 32-bit rolling hash (seed*31 + code unit,
// wrapping on overflow), mapped through |sin(seed)| and scaled by the roster
// length. Every client computes the same index for the same date and roster,
// so the hash must not change.
func DailyTarget(dateKey string, entities []Entity) (Entity, error) {
	if len(entities) == 0 {
		return Entity{}, fmt.Errorf("%w: no characters", ErrInvalidRoster)
	}
	return entities[dailyIndex(dateKey, len(entities))], nil
}

func dailyIndex(dateKey string, n int) int {
	r := math.Abs(math.Sin(float64(dateSeed(dateKey))))
	i := int(math.Floor(r * float64(n)))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// dateSeed hashes UTF-16 code units with int32 wraparound.
func dateSeed(s string) int32 {
	var seed int32
	for _, u := range utf16.Encode([]rune(s)) {
		seed = seed*31 + int32(u)
	}
	return seed
}
