package scoring

// Priorities weights each scoring factor. A zero weight disables the factor and a
// negative weight inverts its effect.
type Priorities struct {
	// SimilarStartTime rewards days that start at a consistent time
	SimilarStartTime float64 `yaml:"similarStartTime" json:"similarStartTime"`

	// SimilarEndTime rewards days that end at a consistent time
	SimilarEndTime float64 `yaml:"similarEndTime" json:"similarEndTime"`

	// TimeBetweenClasses rewards longer average gaps between consecutive classes
	TimeBetweenClasses float64 `yaml:"timeBetweenClasses" json:"timeBetweenClasses"`

	// FreeBlock rewards a long free block within each day
	FreeBlock float64 `yaml:"freeBlock" json:"freeBlock"`

	// FreeDay rewards days without any class
	FreeDay float64 `yaml:"freeDay" json:"freeDay"`

	// DayLength rewards shorter days
	DayLength float64 `yaml:"dayLength" json:"dayLength"`
}

// IsZero returns true if every weight is zero, in which case all schedules score 0
func (p Priorities) IsZero() bool {
	return p == Priorities{}
}

// Tuning holds the free-day constants. The count of free days is offset by the
// baseline and then scaled by the multiplier.
type Tuning struct {
	FreeDayBaseline   float64 `yaml:"freeDayBaseline" json:"freeDayBaseline"`
	FreeDayMultiplier float64 `yaml:"freeDayMultiplier" json:"freeDayMultiplier"`
}

// Default free-day constants
const (
	DefaultFreeDayBaseline   = 2
	DefaultFreeDayMultiplier = 30
)

// DefaultTuning returns the default free-day constants
func DefaultTuning() Tuning {
	return Tuning{
		FreeDayBaseline:   DefaultFreeDayBaseline,
		FreeDayMultiplier: DefaultFreeDayMultiplier,
	}
}
