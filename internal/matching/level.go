package matching

// Level is a discrete label derived from a match percentage.
type Level string

// Match levels from best to worst.
const (
	LevelExcellent Level = "Excellent Match"
	LevelGood      Level = "Good Match"
	LevelFair      Level = "Fair Match"
	LevelPoor      Level = "Poor Match"
	LevelVeryPoor  Level = "Very Poor Match"
)

// Threshold is the inclusive lower bound of a level.
type Threshold struct {
	Level   Level   `json:"level"`
	Minimum float64 `json:"minimum"`
}

// thresholds are evaluated highest first; the last entry catches everything.
var thresholds = [...]Threshold{
	{Level: LevelExcellent, Minimum: 80},
	{Level: LevelGood, Minimum: 60},
	{Level: LevelFair, Minimum: 40},
	{Level: LevelPoor, Minimum: 20},
	{Level: LevelVeryPoor, Minimum: 0},
}

// Thresholds returns the fixed level table, highest first.
func Thresholds() []Threshold {
	out := make([]Threshold, len(thresholds))
	copy(out, thresholds[:])
	return out
}

// LevelFor maps a match percentage to its level.
func LevelFor(percentage float64) Level {
	for _, t := range thresholds {
		if percentage >= t.Minimum {
			return t.Level
		}
	}
	return LevelVeryPoor
}
