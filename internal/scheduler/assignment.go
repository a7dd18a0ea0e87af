package scheduler

// Assignment maps every grid cell to the section tag occupying it
// (0 = empty). The grid is shared and immutable; cloning an assignment
// copies only the tag array, which keeps the "never mutate a retained
// leader" rule cheap across generations. Because a cell carries only a
// tag, a slot is structurally either fully empty or fully populated.
type Assignment struct {
	grid *Grid
	tags []int32
}

// NewAssignment returns an empty assignment over the grid.
func NewAssignment(grid *Grid) *Assignment {
	return &Assignment{grid: grid, tags: make([]int32, grid.Len())}
}

// Clone returns an independent copy sharing the immutable grid.
func (a *Assignment) Clone() *Assignment {
	tags := make([]int32, len(a.tags))
	copy(tags, a.tags)
	return &Assignment{grid: a.grid, tags: tags}
}

// Grid returns the shared slot grid.
func (a *Assignment) Grid() *Grid {
	return a.grid
}

// Len returns the number of cells.
func (a *Assignment) Len() int {
	return len(a.tags)
}

// Tag returns the section tag at cell i, or 0 when empty.
func (a *Assignment) Tag(i int) int {
	return int(a.tags[i])
}

// OccupiedCount returns the number of non-empty cells.
func (a *Assignment) OccupiedCount() int {
	n := 0
	for _, tag := range a.tags {
		if tag != 0 {
			n++
		}
	}
	return n
}

// BlockOf returns the cell indices currently carrying the tag, in
// ascending order.
func (a *Assignment) BlockOf(tag int) []int {
	var indices []int
	for i, t := range a.tags {
		if int(t) == tag {
			indices = append(indices, i)
		}
	}
	return indices
}

// placeBlock writes the tag into length cells starting at cell start.
// Callers must have verified the destination; the write itself is
// all-or-nothing by construction.
func (a *Assignment) placeBlock(start, length, tag int) {
	for i := start; i < start+length; i++ {
		a.tags[i] = int32(tag)
	}
}

// clearTag empties every cell carrying the tag.
func (a *Assignment) clearTag(tag int) {
	for i, t := range a.tags {
		if int(t) == tag {
			a.tags[i] = 0
		}
	}
}

// SlotView joins a grid slot with its occupant, if any.
type SlotView struct {
	GridSlot
	Tag     int
	Section Section
}

// OccupiedSlots returns a view of every non-empty cell with its
// section attributes resolved, in slot order.
func (a *Assignment) OccupiedSlots(in *ScheduleInputs) []SlotView {
	views := make([]SlotView, 0, a.OccupiedCount())
	for i, t := range a.tags {
		if t == 0 {
			continue
		}
		sec, ok := in.SectionByTag(int(t))
		if !ok {
			continue
		}
		views = append(views, SlotView{GridSlot: a.grid.Slot(i), Tag: int(t), Section: sec})
	}
	return views
}
