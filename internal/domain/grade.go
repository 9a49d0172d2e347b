package domain

// Grade is an integer rating of recall quality for a single review,
// in the closed range [1,5]: 1 is a complete failure, 3 is recalled with
// difficulty, 4 is recalled correctly, 5 is recalled easily.
//
// The full range is accepted even though the reference client only ever
// submits {1,3,4,5}; restricting the engine to that subset would bake a
// presentation decision into the domain.
type Grade int

// Grade range and success threshold.
const (
	MinGrade Grade = 1
	MaxGrade Grade = 5

	// SuccessThreshold is the lowest grade that counts as a successful
	// recall. Grades below it are lapses and reset the repetition streak.
	SuccessThreshold Grade = 3
)

// Valid reports whether the grade is within the accepted range.
func (g Grade) Valid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// IsSuccess reports whether the grade counts as a successful recall.
func (g Grade) IsSuccess() bool {
	return g >= SuccessThreshold
}
