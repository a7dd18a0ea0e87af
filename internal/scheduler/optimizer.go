package scheduler

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle phase of an optimization run.
type State string

const (
	StateInit      State = "INIT"
	StateIterating State = "ITERATING"
	// StateConverged means a zero-penalty timetable was found early.
	StateConverged State = "CONVERGED"
	// StateExhausted means the iteration budget ran out.
	StateExhausted State = "EXHAUSTED"
)

// Search bounds and tuning defaults.
const (
	MinPopulationSize = 4
	MaxPopulationSize = 100
	MinIterations     = 4
	MaxIterations     = 100

	// DefaultRestartProbability is the per-member chance of a full
	// re-randomization each generation, keeping exploration alive.
	DefaultRestartProbability = 0.05
	// DefaultRelaxedGapMinutes is the tolerated break between the
	// bins of a block when strict adjacency finds no destination.
	DefaultRelaxedGapMinutes = 5
	// explorationStart is the initial value of the decaying
	// coefficient a.
	explorationStart = 2.0
)

// SearchConfig carries the tunables of one optimization run.
type SearchConfig struct {
	PopulationSize     int
	MaxIterations      int
	RestartProbability float64
	RelaxedGapMinutes  int
	Weights            Weights
	// Seed fixes the random source; zero means time-seeded.
	Seed int64
}

// Validate enforces the external bounds on population and iterations.
func (c SearchConfig) Validate() error {
	if c.PopulationSize < MinPopulationSize || c.PopulationSize > MaxPopulationSize {
		return fmt.Errorf("population size %d out of bounds [%d,%d]", c.PopulationSize, MinPopulationSize, MaxPopulationSize)
	}
	if c.MaxIterations < MinIterations || c.MaxIterations > MaxIterations {
		return fmt.Errorf("max iterations %d out of bounds [%d,%d]", c.MaxIterations, MinIterations, MaxIterations)
	}
	return nil
}

func (c SearchConfig) withDefaults() SearchConfig {
	if c.RestartProbability <= 0 {
		c.RestartProbability = DefaultRestartProbability
	}
	if c.RelaxedGapMinutes <= 0 {
		c.RelaxedGapMinutes = DefaultRelaxedGapMinutes
	}
	if c.Weights == (Weights{}) {
		c.Weights = DefaultWeights
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c
}

// ProgressFunc receives one human-readable line per generation. It is
// invoked synchronously at the per-generation yield point and must not
// block; fan-out and slow-subscriber handling belong to the sink.
type ProgressFunc func(msg string)

// Result is the outcome of a finished run.
type Result struct {
	Best        *Assignment
	Fitness     float64
	Generations int
	State       State
	// Statuses maps violating tags of the best assignment to their
	// marker: "red" for hard violations, "yellow" for preference
	// violations.
	Statuses map[int]string
	// Unplaced lists tags of sections absent from the best
	// assignment.
	Unplaced []int
	Elapsed  time.Duration
}

// Optimizer runs the grey wolf search over one input snapshot. Each
// Optimizer owns its population and random source; independent runs
// must use independent Optimizer values.
type Optimizer struct {
	inputs   *ScheduleInputs
	grid     *Grid
	cfg      SearchConfig
	engine   *Engine
	repair   *repairer
	gen      *Generator
	rng      *rand.Rand
	logger   *zap.SugaredLogger
	progress ProgressFunc
	state    State
}

// New prepares an optimizer for the snapshot. The configuration is
// validated up front; a run is rejected before any work happens.
func New(inputs *ScheduleInputs, cfg SearchConfig, logger *zap.Logger) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	grid, err := BuildGrid(inputs.Days, inputs.Rooms, inputs.Bins)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	engine := NewEngine(inputs)
	return &Optimizer{
		inputs: inputs,
		grid:   grid,
		cfg:    cfg,
		engine: engine,
		repair: newRepairer(inputs, engine, rng, cfg.RelaxedGapMinutes),
		gen:    NewGenerator(inputs, grid, rng, logger),
		rng:    rng,
		logger: logger.Sugar(),
		state:  StateInit,
	}, nil
}

// OnProgress registers the per-generation progress sink.
func (o *Optimizer) OnProgress(fn ProgressFunc) {
	o.progress = fn
}

// State returns the current lifecycle phase.
func (o *Optimizer) State() State {
	return o.state
}

// Run executes the search until convergence, exhaustion or context
// cancellation. Cancellation is checked once per generation, at the
// same yield point that emits progress; a cancelled run returns the
// context error and no result.
func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	population := make([]*Assignment, o.cfg.PopulationSize)
	fitness := make([]float64, o.cfg.PopulationSize)
	for i := range population {
		population[i] = o.gen.Build()
		fitness[i] = Fitness(o.engine.Collect(population[i]), o.cfg.Weights)
	}

	var best *Assignment
	bestFitness := math.Inf(1)
	generation := 0
	o.state = StateIterating

	for ; generation < o.cfg.MaxIterations; generation++ {
		order := rankByFitness(fitness)
		leaders := Leaders{population[order[0]], population[order[1]], population[order[2]]}

		if fitness[order[0]] < bestFitness {
			bestFitness = fitness[order[0]]
			best = leaders[0].Clone()
		}

		o.emitProgress(generation+1, bestFitness)

		if bestFitness <= 0 {
			o.state = StateConverged
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a := explorationStart * (1 - float64(generation)/float64(o.cfg.MaxIterations))

		next := make([]*Assignment, len(population))
		for i := range population {
			if o.rng.Float64() < o.cfg.RestartProbability {
				next[i] = o.gen.Build()
			} else {
				next[i] = o.repair.Repair(population[i], leaders, a)
			}
			fitness[i] = Fitness(o.engine.Collect(next[i]), o.cfg.Weights)
		}
		population = next
	}

	if o.state != StateConverged {
		o.state = StateExhausted
	}
	if best == nil {
		// Zero-iteration runs cannot happen (bounds force at least
		// four generations), but guard against a nil best anyway.
		order := rankByFitness(fitness)
		best = population[order[0]].Clone()
		bestFitness = fitness[order[0]]
	}

	result := &Result{
		Best:        best,
		Fitness:     bestFitness,
		Generations: generation,
		State:       o.state,
		Statuses:    o.annotate(best),
		Unplaced:    o.unplacedTags(best),
		Elapsed:     time.Since(started),
	}

	o.logger.Infow("optimization finished",
		"state", string(o.state),
		"generations", result.Generations,
		"best_fitness", result.Fitness,
		"unplaced_sections", len(result.Unplaced),
		"elapsed", result.Elapsed,
	)
	return result, nil
}

// annotate runs a final conflict pass over the best assignment and
// derives the per-tag status markers.
func (o *Optimizer) annotate(best *Assignment) map[int]string {
	report := o.engine.Collect(best)
	statuses := make(map[int]string)
	for tag := range report.Soft() {
		statuses[tag] = "yellow"
	}
	for tag := range report.Hard() {
		statuses[tag] = "red"
	}
	return statuses
}

func (o *Optimizer) unplacedTags(best *Assignment) []int {
	var missing []int
	for _, sec := range o.inputs.Sections {
		if len(best.BlockOf(sec.Tag)) == 0 {
			missing = append(missing, sec.Tag)
		}
	}
	return missing
}

func (o *Optimizer) emitProgress(generation int, bestFitness float64) {
	msg := fmt.Sprintf("generation %d/%d - best fitness: %g", generation, o.cfg.MaxIterations, bestFitness)
	o.logger.Debugw("generation finished", "generation", generation, "best_fitness", bestFitness)
	if o.progress != nil {
		o.progress(msg)
	}
}

// rankByFitness returns population indices ordered by ascending
// penalty, ties broken by index for determinism.
func rankByFitness(fitness []float64) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return fitness[order[i]] < fitness[order[j]]
	})
	return order
}
