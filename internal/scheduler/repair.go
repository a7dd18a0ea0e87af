package scheduler

import (
	"math"
	"math/rand"
	"sort"
)

// Leaders holds the generation's three best assignments in rank order:
// alpha, beta, delta. They are read-only references; repair never
// writes through them.
type Leaders [3]*Assignment

// repairer relocates conflicting section blocks, guided by the
// leaders through the grey wolf coefficient A = 2·a·r − a.
type repairer struct {
	inputs        *ScheduleInputs
	engine        *Engine
	rng           *rand.Rand
	relaxedGapMin int
}

func newRepairer(inputs *ScheduleInputs, engine *Engine, rng *rand.Rand, relaxedGapMin int) *repairer {
	if relaxedGapMin <= 0 {
		relaxedGapMin = 5
	}
	return &repairer{inputs: inputs, engine: engine, rng: rng, relaxedGapMin: relaxedGapMin}
}

// Repair returns a new assignment with the current one's conflicting
// blocks relocated. Hard-violating sections are processed before
// preference-violating ones so a soft-driven move cannot undo a hard
// fix on the same tag. Sections that were never placed are given
// another placement attempt at the end.
func (r *repairer) Repair(current *Assignment, leaders Leaders, a float64) *Assignment {
	next := current.Clone()
	report := r.engine.Collect(next)
	hard := report.Hard()
	soft := report.Soft()

	for _, tag := range hard.Sorted() {
		r.relocate(next, leaders, tag, a)
	}
	for _, tag := range soft.Sorted() {
		if hard.Contains(tag) {
			continue
		}
		r.relocate(next, leaders, tag, a)
	}

	for i := range r.inputs.Sections {
		sec := r.inputs.Sections[i]
		if len(next.BlockOf(sec.Tag)) == 0 {
			r.placeAnywhere(next, sec)
		}
	}
	return next
}

// relocate moves one section's block. Leaders are consulted in order
// of smallest |A| coefficient; a leader without the tag falls through
// to the next. When no guided destination is legal the move degrades
// to an unguided one, and when even that fails the block stays put and
// the conflict carries into the next generation.
func (r *repairer) relocate(a *Assignment, leaders Leaders, tag int, aCoef float64) bool {
	sec, ok := r.inputs.SectionByTag(tag)
	if !ok {
		return false
	}
	if len(a.BlockOf(tag)) == 0 {
		return r.placeAnywhere(a, sec)
	}

	type ranked struct {
		leader *Assignment
		coeff  float64
	}
	order := make([]ranked, 0, len(leaders))
	for _, leader := range leaders {
		if leader == nil {
			continue
		}
		coeff := 2*aCoef*r.rng.Float64() - aCoef
		order = append(order, ranked{leader: leader, coeff: coeff})
	}
	sort.SliceStable(order, func(i, j int) bool {
		return math.Abs(order[i].coeff) < math.Abs(order[j].coeff)
	})

	for _, cand := range order {
		block := cand.leader.BlockOf(tag)
		if len(block) == 0 {
			continue
		}
		ref := cand.leader.Grid().Slot(block[0])
		guided := func(first GridSlot) bool {
			return first.Day == ref.Day && first.Room == ref.Room
		}
		if r.tryMove(a, sec, guided, gapNone, gapRelaxed) {
			return true
		}
	}
	return r.tryMove(a, sec, nil, gapNone, gapRelaxed)
}

// tryMove searches for a legal destination under each gap policy in
// turn and, if one exists, moves the whole block there. The
// destination is fully determined before any cell is touched, so the
// block either moves completely or not at all.
func (r *repairer) tryMove(a *Assignment, sec Section, filter blockFilter, policies ...gapPolicy) bool {
	for _, policy := range policies {
		starts := candidateStarts(a, sec.Credits, sec.Tag, policy, r.relaxedGapMin, filter)
		if len(starts) == 0 {
			continue
		}
		start := starts[r.rng.Intn(len(starts))]
		a.clearTag(sec.Tag)
		a.placeBlock(start, sec.Credits, sec.Tag)
		return true
	}
	return false
}

// placeAnywhere gives an unplaced section its best shot: strict
// adjacency first, then relaxed, then positional contiguity only.
func (r *repairer) placeAnywhere(a *Assignment, sec Section) bool {
	return r.tryMove(a, sec, nil, gapNone, gapRelaxed, gapAny)
}
