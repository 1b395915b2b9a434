package entity

// MasteryLevel expresses retention strength for a vocabulary entry on a 0-5
// scale. Levels 4 and 5 count as mastered.
type MasteryLevel int16

const (
	MasteryNew MasteryLevel = 0
	MasteryMax MasteryLevel = 5

	// MasteredThreshold is the lowest level that counts as mastered.
	MasteredThreshold MasteryLevel = 4
)

// Validate reports whether the level lies in the supported 0-5 range.
func (m MasteryLevel) Validate() error {
	if m < MasteryNew || m > MasteryMax {
		return ErrInvalidMasteryLevel
	}
	return nil
}

// Mastered reports whether the level counts as mastered.
func (m MasteryLevel) Mastered() bool {
	return m >= MasteredThreshold
}

// Bump increases the level by one, capped at the maximum.
func (m MasteryLevel) Bump() MasteryLevel {
	if m >= MasteryMax {
		return MasteryMax
	}
	return m + 1
}
