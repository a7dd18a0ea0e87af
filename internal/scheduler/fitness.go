package scheduler

// Weights controls the penalty ratio between hard violations and
// preference violations. Hard constraints dominate by default.
type Weights struct {
	Hard float64
	Soft float64
}

// DefaultWeights is the 1.0 / 0.5 ratio the search was tuned with.
var DefaultWeights = Weights{Hard: 1.0, Soft: 0.5}

// Fitness reduces a conflict report to a single penalty: the number of
// distinct hard-violating section tags weighted by Hard plus the
// number of distinct preference-violating tags weighted by Soft. Lower
// is better; zero means a violation-free timetable.
func Fitness(report *ConflictReport, w Weights) float64 {
	return w.Hard*float64(len(report.Hard())) + w.Soft*float64(len(report.Soft()))
}
