package srs

// Params defines the Leitner box configuration
type Params struct {
	// Level bounds; every stored level is clamped into [MinLevel, MaxLevel]
	MinLevel int
	MaxLevel int

	// Days until the next review, per level reached after a review
	IntervalDays map[int]int

	// Used for a level missing from IntervalDays
	FallbackIntervalDays int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinLevel int
	MaxLevel int

	// Entries replace the matching default entries; other levels keep their default
	IntervalDays map[int]int

	FallbackIntervalDays int
}

// NewDefaultParams creates a new Params instance with the standard five-box schedule
func NewDefaultParams() *Params {
	return &Params{
		MinLevel: 1,
		MaxLevel: 5,

		IntervalDays: map[int]int{
			1: 1,
			2: 3,
			3: 7,
			4: 14,
			5: 30,
		},

		FallbackIntervalDays: 1,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinLevel > 0 {
		params.MinLevel = config.MinLevel
	}
	if config.MaxLevel >= params.MinLevel {
		params.MaxLevel = config.MaxLevel
	}

	for level, days := range config.IntervalDays {
		if days > 0 {
			params.IntervalDays[level] = days
		}
	}

	if config.FallbackIntervalDays > 0 {
		params.FallbackIntervalDays = config.FallbackIntervalDays
	}

	return params
}
