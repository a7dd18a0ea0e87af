package scheduler

import (
	"math/rand"

	"go.uber.org/zap"
)

// gapPolicy controls how much time may pass between consecutive bins
// of a candidate block.
type gapPolicy int

const (
	// gapAny ignores time gaps; contiguity is positional only.
	gapAny gapPolicy = iota
	// gapNone requires back-to-back bins.
	gapNone
	// gapRelaxed tolerates a small break between consecutive bins.
	gapRelaxed
)

// blockFilter accepts or rejects a candidate block based on its first
// slot. A nil filter accepts everything.
type blockFilter func(first GridSlot) bool

// candidateStarts returns every cell index that starts a block of
// `length` cells which are all empty (cells carrying ignoreTag count
// as empty), share one day and one room, and satisfy the gap policy.
func candidateStarts(a *Assignment, length int, ignoreTag int, policy gapPolicy, relaxedGapMin int, filter blockFilter) []int {
	grid := a.Grid()
	var starts []int

	for start := 0; start+length <= grid.Len(); start++ {
		first := grid.Slot(start)
		if filter != nil && !filter(first) {
			continue
		}
		ok := true
		prev := first
		for offset := 0; offset < length; offset++ {
			tag := a.Tag(start + offset)
			if tag != 0 && tag != ignoreTag {
				ok = false
				break
			}
			slot := grid.Slot(start + offset)
			if slot.Day != first.Day || slot.Room != first.Room {
				ok = false
				break
			}
			if offset > 0 {
				gap := slot.StartMin - prev.EndMin
				switch policy {
				case gapNone:
					if gap != 0 {
						ok = false
					}
				case gapRelaxed:
					if gap < 0 || gap > relaxedGapMin {
						ok = false
					}
				}
				if !ok {
					break
				}
			}
			prev = slot
		}
		if ok {
			starts = append(starts, start)
		}
	}
	return starts
}

// Generator builds random candidate assignments by greedy block
// placement in shuffled section order.
type Generator struct {
	inputs *ScheduleInputs
	grid   *Grid
	rng    *rand.Rand
	logger *zap.SugaredLogger
}

// NewGenerator wires a constructive generator. A nil logger is
// replaced by a no-op one.
func NewGenerator(inputs *ScheduleInputs, grid *Grid, rng *rand.Rand, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{inputs: inputs, grid: grid, rng: rng, logger: logger.Sugar()}
}

// Build produces one candidate assignment. Sections the grid cannot
// hold are left unplaced and reported; later repair generations are
// expected to close such gaps.
func (g *Generator) Build() *Assignment {
	a := NewAssignment(g.grid)

	order := g.rng.Perm(len(g.inputs.Sections))
	for _, idx := range order {
		sec := g.inputs.Sections[idx]
		starts := candidateStarts(a, sec.Credits, 0, gapAny, 0, nil)
		if len(starts) == 0 {
			g.logger.Warnw("unable to place section",
				"course", sec.CourseName,
				"class_group", sec.ClassGroup,
				"teacher", sec.TeacherName,
				"credits", sec.Credits,
			)
			continue
		}
		start := starts[g.rng.Intn(len(starts))]
		a.placeBlock(start, sec.Credits, sec.Tag)
	}
	return a
}
