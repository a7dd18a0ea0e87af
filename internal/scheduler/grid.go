package scheduler

// GridSlot is one atomic (day, room, time-bin) cell of the timetable.
// Slots are immutable for the duration of a run; occupancy lives in
// the Assignment, not here.
type GridSlot struct {
	Index    int // sequential identity, 1-based
	Day      string
	Room     string
	Start    string
	End      string
	StartMin int
	EndMin   int
}

// Grid enumerates every (day × room × time-bin) combination once, in a
// fixed day→room→bin nesting order so slot indices are stable within a
// run. Consecutive indices inside one (day, room) stripe are adjacent
// time bins.
type Grid struct {
	slots []GridSlot
}

// BuildGrid constructs the empty slot grid. Empty input lists yield an
// empty grid.
func BuildGrid(days, rooms []string, bins []TimeBin) (*Grid, error) {
	slots := make([]GridSlot, 0, len(days)*len(rooms)*len(bins))
	index := 1
	for _, day := range days {
		for _, room := range rooms {
			for _, bin := range bins {
				startMin, err := parseClock(bin.Start)
				if err != nil {
					return nil, err
				}
				endMin, err := parseClock(bin.End)
				if err != nil {
					return nil, err
				}
				slots = append(slots, GridSlot{
					Index:    index,
					Day:      day,
					Room:     room,
					Start:    bin.Start,
					End:      bin.End,
					StartMin: startMin,
					EndMin:   endMin,
				})
				index++
			}
		}
	}
	return &Grid{slots: slots}, nil
}

// Len returns the number of slots in the grid.
func (g *Grid) Len() int {
	return len(g.slots)
}

// Slot returns the grid slot at position i (0-based).
func (g *Grid) Slot(i int) GridSlot {
	return g.slots[i]
}
