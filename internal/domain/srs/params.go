package srs

// Params defines all configurable parameters for the SM-2 scheduling algorithm.
type Params struct {
	// MinEaseFactor is the hard floor applied after every ease update.
	MinEaseFactor float64

	// FirstInterval is the interval in days after the first successful
	// review of a streak (repetitions == 1).
	FirstInterval int

	// SecondInterval is the interval in days after the second successful
	// review of a streak (repetitions == 2).
	SecondInterval int

	// LapseInterval is the interval in days assigned when a review is
	// graded below the success threshold.
	LapseInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero-valued fields keep their defaults.
type ParamsConfig struct {
	MinEaseFactor  float64
	FirstInterval  int
	SecondInterval int
	LapseInterval  int
}

// NewDefaultParams creates a new Params instance with the standard SM-2 values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:  1.3,
		FirstInterval:  1,
		SecondInterval: 6,
		LapseInterval:  1,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}

	return params
}
