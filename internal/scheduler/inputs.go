// Package scheduler implements the grey wolf timetable optimizer: a
// slot-grid assignment model, a randomized constructive generator, a
// conflict engine over hard and soft constraints, and a population
// based search loop that repairs conflicting section blocks guided by
// the three best solutions of each generation.
package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

// Section is one teacher+course+class-group offering. It requires a
// contiguous block of Credits slots sharing one day and one room. Tag
// is the correlation id written into every slot of the block.
type Section struct {
	Tag         int
	CourseID    int64
	CourseName  string
	TeacherID   int64
	TeacherName string
	ClassGroup  string
	Semester    int
	Credits     int
	Delivery    string
}

// Online reports whether the section is delivered online and therefore
// does not occupy a physical room for double-booking purposes.
func (s Section) Online() bool {
	return strings.EqualFold(strings.TrimSpace(s.Delivery), "online")
}

// TimeBin is one teaching period of the daily grid.
type TimeBin struct {
	Start string
	End   string
}

// TeacherPreference lists days a teacher refuses and the daily time
// window they accept. Empty AllowedStart/AllowedEnd means any time.
type TeacherPreference struct {
	TeacherID      int64
	RestrictedDays []string
	AllowedStart   string
	AllowedEnd     string
}

// ProgramPreference is a program-wide restriction: teaching on any of
// the restricted days inside any of the windows is penalized.
type ProgramPreference struct {
	RestrictedDays []string
	Windows        []TimeBin
}

type teacherRule struct {
	restricted map[string]struct{}
	hasWindow  bool
	startMin   int
	endMin     int
}

type programRule struct {
	restricted map[string]struct{}
	windows    [][2]int
}

// ScheduleInputs is the immutable per-run snapshot consumed by every
// core component. It is built once from externally fetched rows and
// never mutated afterwards; all time strings are parsed and validated
// at construction.
type ScheduleInputs struct {
	Days     []string
	Rooms    []string
	Bins     []TimeBin
	Sections []Section

	sectionByTag map[int]*Section
	teacherRules map[int64]teacherRule
	program      programRule
}

// NewScheduleInputs validates and snapshots the run inputs. Sections
// are re-tagged sequentially (1..n) so tags are dense and stable for
// the duration of the run.
func NewScheduleInputs(days, rooms []string, bins []TimeBin, sections []Section, teacherPrefs []TeacherPreference, program ProgramPreference) (*ScheduleInputs, error) {
	for _, bin := range bins {
		if _, err := parseClock(bin.Start); err != nil {
			return nil, err
		}
		if _, err := parseClock(bin.End); err != nil {
			return nil, err
		}
	}

	in := &ScheduleInputs{
		Days:         append([]string(nil), days...),
		Rooms:        append([]string(nil), rooms...),
		Bins:         append([]TimeBin(nil), bins...),
		Sections:     append([]Section(nil), sections...),
		sectionByTag: make(map[int]*Section, len(sections)),
		teacherRules: make(map[int64]teacherRule, len(teacherPrefs)),
	}

	for i := range in.Sections {
		sec := &in.Sections[i]
		if sec.Credits < 1 {
			return nil, fmt.Errorf("section %q/%q: credits must be at least 1", sec.CourseName, sec.ClassGroup)
		}
		sec.Tag = i + 1
		in.sectionByTag[sec.Tag] = sec
	}

	for _, pref := range teacherPrefs {
		rule := teacherRule{restricted: lowerSet(pref.RestrictedDays)}
		if pref.AllowedStart != "" && pref.AllowedEnd != "" {
			start, err := parseClock(pref.AllowedStart)
			if err != nil {
				return nil, err
			}
			end, err := parseClock(pref.AllowedEnd)
			if err != nil {
				return nil, err
			}
			rule.hasWindow = true
			rule.startMin = start
			rule.endMin = end
		}
		in.teacherRules[pref.TeacherID] = rule
	}

	in.program = programRule{restricted: lowerSet(program.RestrictedDays)}
	for _, window := range program.Windows {
		start, err := parseClock(window.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(window.End)
		if err != nil {
			return nil, err
		}
		in.program.windows = append(in.program.windows, [2]int{start, end})
	}

	return in, nil
}

// SectionByTag returns the section carrying the given tag.
func (in *ScheduleInputs) SectionByTag(tag int) (Section, bool) {
	sec, ok := in.sectionByTag[tag]
	if !ok {
		return Section{}, false
	}
	return *sec, true
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// parseClock converts "HH:MM" or "HH:MM:SS" into minutes since
// midnight. Malformed values are a data error and fail fast.
func parseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time format %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time format %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time format %q", raw)
	}
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return 0, fmt.Errorf("invalid time format %q", raw)
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time format %q", raw)
	}
	return hour*60 + minute, nil
}

// overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
