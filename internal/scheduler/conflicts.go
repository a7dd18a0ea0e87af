package scheduler

import (
	"sort"
	"strings"
)

// TagSet is a set of section tags.
type TagSet map[int]struct{}

func (s TagSet) add(tag int) {
	s[tag] = struct{}{}
}

// Contains reports membership.
func (s TagSet) Contains(tag int) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in ascending order.
func (s TagSet) Sorted() []int {
	tags := make([]int, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Ints(tags)
	return tags
}

// SlotPair identifies two clashing slots by their 1-based indices.
type SlotPair struct {
	A int
	B int
}

// RoomSplit details a section whose block is spread across rooms.
type RoomSplit struct {
	Tag     int
	Rooms   []string
	SlotIDs []int
}

// ConflictReport is the fixed-shape result of one conflict pass. Hard
// categories carry both the implicated tags and the clashing slot
// pairs; preference categories carry tags only. The report is a value
// computed from scratch on every evaluation and never persisted.
type ConflictReport struct {
	// UnplacedTags lists sections absent from the assignment. A
	// timetable missing sections is never considered conflict-free.
	UnplacedTags      TagSet
	RoomConsistency   TagSet
	RoomSplits        []RoomSplit
	TeacherClashTags  TagSet
	TeacherClashPairs []SlotPair
	RoomClashTags     TagSet
	RoomClashPairs    []SlotPair
	GroupClashTags    TagSet
	GroupClashPairs   []SlotPair
	TeacherPrefTags   TagSet
	ProgramPrefTags   TagSet
}

func newConflictReport() *ConflictReport {
	return &ConflictReport{
		UnplacedTags:     make(TagSet),
		RoomConsistency:  make(TagSet),
		TeacherClashTags: make(TagSet),
		RoomClashTags:    make(TagSet),
		GroupClashTags:   make(TagSet),
		TeacherPrefTags:  make(TagSet),
		ProgramPrefTags:  make(TagSet),
	}
}

// Hard returns the union of tags implicated in hard violations.
func (r *ConflictReport) Hard() TagSet {
	union := make(TagSet)
	for _, set := range []TagSet{r.UnplacedTags, r.RoomConsistency, r.TeacherClashTags, r.RoomClashTags, r.GroupClashTags} {
		for tag := range set {
			union.add(tag)
		}
	}
	return union
}

// Soft returns the union of tags implicated in preference violations.
func (r *ConflictReport) Soft() TagSet {
	union := make(TagSet)
	for tag := range r.TeacherPrefTags {
		union.add(tag)
	}
	for tag := range r.ProgramPrefTags {
		union.add(tag)
	}
	return union
}

// Clean reports whether no category holds any violation.
func (r *ConflictReport) Clean() bool {
	return len(r.Hard()) == 0 && len(r.Soft()) == 0
}

// Engine evaluates assignments against the hard constraints and the
// teacher/program preferences of the run snapshot.
type Engine struct {
	inputs *ScheduleInputs
}

// NewEngine builds a conflict engine over the snapshot.
func NewEngine(inputs *ScheduleInputs) *Engine {
	return &Engine{inputs: inputs}
}

// Collect runs every check over the assignment and returns the full
// report. The result is deterministic for a given assignment and
// snapshot: groups are swept in sorted slot order and pair lists are
// sorted before returning.
func (e *Engine) Collect(a *Assignment) *ConflictReport {
	occupied := a.OccupiedSlots(e.inputs)
	report := newConflictReport()

	e.checkPlacement(occupied, report)
	e.checkRoomConsistency(occupied, report)
	e.checkTeacherClashes(occupied, report)
	e.checkRoomClashes(occupied, report)
	e.checkGroupClashes(occupied, report)
	e.checkTeacherPreferences(occupied, report)
	e.checkProgramPreferences(occupied, report)

	sortPairs(report.TeacherClashPairs)
	sortPairs(report.RoomClashPairs)
	sortPairs(report.GroupClashPairs)
	sort.Slice(report.RoomSplits, func(i, j int) bool {
		return report.RoomSplits[i].Tag < report.RoomSplits[j].Tag
	})
	return report
}

// checkPlacement flags sections that hold no slot at all.
func (e *Engine) checkPlacement(occupied []SlotView, report *ConflictReport) {
	placed := make(TagSet, len(occupied))
	for _, view := range occupied {
		placed.add(view.Tag)
	}
	for _, sec := range e.inputs.Sections {
		if !placed.Contains(sec.Tag) {
			report.UnplacedTags.add(sec.Tag)
		}
	}
}

// checkRoomConsistency flags sections whose slots span several rooms.
// Online sections are not exempt: a split block is inconsistent data
// regardless of delivery mode.
func (e *Engine) checkRoomConsistency(occupied []SlotView, report *ConflictReport) {
	byTag := make(map[int][]SlotView)
	for _, view := range occupied {
		byTag[view.Tag] = append(byTag[view.Tag], view)
	}
	for tag, views := range byTag {
		rooms := make(map[string]struct{})
		for _, view := range views {
			rooms[view.Room] = struct{}{}
		}
		if len(rooms) <= 1 {
			continue
		}
		report.RoomConsistency.add(tag)
		split := RoomSplit{Tag: tag}
		for room := range rooms {
			split.Rooms = append(split.Rooms, room)
		}
		sort.Strings(split.Rooms)
		for _, view := range views {
			split.SlotIDs = append(split.SlotIDs, view.Index)
		}
		sort.Ints(split.SlotIDs)
		report.RoomSplits = append(report.RoomSplits, split)
	}
}

// checkTeacherClashes flags overlapping slots taught by one teacher on
// one day for different courses.
func (e *Engine) checkTeacherClashes(occupied []SlotView, report *ConflictReport) {
	type key struct {
		teacher int64
		day     string
	}
	groups := make(map[key][]SlotView)
	for _, view := range occupied {
		groups[key{view.Section.TeacherID, strings.ToLower(view.Day)}] = append(groups[key{view.Section.TeacherID, strings.ToLower(view.Day)}], view)
	}
	for _, views := range groups {
		sweepOverlaps(views, func(a, b SlotView) bool {
			return a.Section.CourseID != b.Section.CourseID
		}, func(a, b SlotView) {
			report.TeacherClashTags.add(a.Tag)
			report.TeacherClashTags.add(b.Tag)
			report.TeacherClashPairs = append(report.TeacherClashPairs, SlotPair{A: a.Index, B: b.Index})
		})
	}
}

// checkRoomClashes flags one room hosting two overlapping slots of
// different class groups on one day. Online sections do not occupy a
// physical room and are skipped.
func (e *Engine) checkRoomClashes(occupied []SlotView, report *ConflictReport) {
	type key struct {
		room string
		day  string
	}
	groups := make(map[key][]SlotView)
	for _, view := range occupied {
		if view.Section.Online() {
			continue
		}
		k := key{view.Room, strings.ToLower(view.Day)}
		groups[k] = append(groups[k], view)
	}
	for _, views := range groups {
		sweepOverlaps(views, func(a, b SlotView) bool {
			return a.Section.ClassGroup != b.Section.ClassGroup
		}, func(a, b SlotView) {
			report.RoomClashTags.add(a.Tag)
			report.RoomClashTags.add(b.Tag)
			report.RoomClashPairs = append(report.RoomClashPairs, SlotPair{A: a.Index, B: b.Index})
		})
	}
}

// checkGroupClashes flags overlapping slots for one class group and
// semester cohort on one day. Overlaps are always violations here;
// there is no exemption for diverging teacher and room.
func (e *Engine) checkGroupClashes(occupied []SlotView, report *ConflictReport) {
	type key struct {
		group    string
		day      string
		semester int
	}
	groups := make(map[key][]SlotView)
	for _, view := range occupied {
		k := key{view.Section.ClassGroup, strings.ToLower(view.Day), view.Section.Semester}
		groups[k] = append(groups[k], view)
	}
	for _, views := range groups {
		sweepOverlaps(views, func(a, b SlotView) bool {
			return a.Tag != b.Tag
		}, func(a, b SlotView) {
			report.GroupClashTags.add(a.Tag)
			report.GroupClashTags.add(b.Tag)
			report.GroupClashPairs = append(report.GroupClashPairs, SlotPair{A: a.Index, B: b.Index})
		})
	}
}

// checkTeacherPreferences flags slots on a teacher's restricted day or
// starting outside their allowed window.
func (e *Engine) checkTeacherPreferences(occupied []SlotView, report *ConflictReport) {
	for _, view := range occupied {
		rule, ok := e.inputs.teacherRules[view.Section.TeacherID]
		if !ok {
			continue
		}
		day := strings.ToLower(view.Day)
		if _, restricted := rule.restricted[day]; restricted {
			report.TeacherPrefTags.add(view.Tag)
			continue
		}
		if rule.hasWindow && (view.StartMin < rule.startMin || view.StartMin >= rule.endMin) {
			report.TeacherPrefTags.add(view.Tag)
		}
	}
}

// checkProgramPreferences flags slots on a program-restricted day
// starting inside a restricted window.
func (e *Engine) checkProgramPreferences(occupied []SlotView, report *ConflictReport) {
	rule := e.inputs.program
	if len(rule.restricted) == 0 || len(rule.windows) == 0 {
		return
	}
	for _, view := range occupied {
		day := strings.ToLower(view.Day)
		if _, restricted := rule.restricted[day]; !restricted {
			continue
		}
		for _, window := range rule.windows {
			if view.StartMin >= window[0] && view.StartMin < window[1] {
				report.ProgramPrefTags.add(view.Tag)
				break
			}
		}
	}
}

// sweepOverlaps sorts the group by start time and reports every
// overlapping pair that satisfies the clash predicate. With sorted
// starts the inner scan can stop at the first non-overlapping
// successor, which keeps detection at O(n log n + k) per group.
func sweepOverlaps(views []SlotView, clash func(a, b SlotView) bool, report func(a, b SlotView)) {
	sort.Slice(views, func(i, j int) bool {
		if views[i].StartMin == views[j].StartMin {
			return views[i].Index < views[j].Index
		}
		return views[i].StartMin < views[j].StartMin
	})
	for i := 0; i < len(views); i++ {
		for j := i + 1; j < len(views); j++ {
			if views[j].StartMin >= views[i].EndMin {
				break
			}
			if !overlaps(views[i].StartMin, views[i].EndMin, views[j].StartMin, views[j].EndMin) {
				continue
			}
			if clash(views[i], views[j]) {
				report(views[i], views[j])
			}
		}
	}
}

func sortPairs(pairs []SlotPair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A == pairs[j].A {
			return pairs[i].B < pairs[j].B
		}
		return pairs[i].A < pairs[j].A
	})
}
