package model

import (
	"fmt"
	"sort"
)

// SectionKey uniquely identifies a section within a catalog (the registrar's CRN)
type SectionKey uint64

// Meeting is one recurring weekly block of a section.
// Start and End are either both set (a timed meeting) or both nil (time-free, e.g. online).
type Meeting struct {
	Start     *Time  `json:"start,omitempty"`
	End       *Time  `json:"end,omitempty"`
	Days      DaySet `json:"days"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`

	BuildingCode string `json:"buildingCode,omitempty"`
	BuildingName string `json:"buildingName,omitempty"`
	Room         string `json:"room,omitempty"`
	MeetingType  string `json:"meetingType,omitempty"`
}

// IsTimed returns true if the meeting has both a start and an end time
func (m Meeting) IsTimed() bool {
	return m.Start != nil && m.End != nil
}

// IsTimeFree returns true if the meeting has neither a start nor an end time
func (m Meeting) IsTimeFree() bool {
	return m.Start == nil && m.End == nil
}

// IsIncomplete returns true if exactly one of start/end is set
func (m Meeting) IsIncomplete() bool {
	return !m.IsTimed() && !m.IsTimeFree()
}

// CreditHours mirrors the registrar's credit fields; any of them may be absent
type CreditHours struct {
	High  *uint64 `json:"high,omitempty"`
	Low   *uint64 `json:"low,omitempty"`
	Hours *uint64 `json:"hours,omitempty"`
}

// Enrollment holds seat counts for either the section or its wait list
type Enrollment struct {
	Count     uint64 `json:"count"`
	Capacity  uint64 `json:"capacity"`
	Available int64  `json:"available"`
}

// CrossList links sections that share one pool of seats
type CrossList struct {
	Group      string     `json:"group"`
	Enrollment Enrollment `json:"enrollment"`
}

// Faculty is an instructor of a section
type Faculty struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Primary bool   `json:"primary"`
}

// Section is one schedulable offering of a course
type Section struct {
	Key                 SectionKey  `json:"key"`
	Campus              string      `json:"campus"`
	Subject             string      `json:"subject"`
	SubjectDescription  string      `json:"subjectDescription,omitempty"`
	CourseNumber        string      `json:"courseNumber"`
	Title               string      `json:"title"`
	ScheduleType        string      `json:"scheduleType"`
	CreditHours         CreditHours `json:"creditHours"`
	Enrollment          Enrollment  `json:"enrollment"`
	WaitList            Enrollment  `json:"waitList"`
	CrossList           *CrossList  `json:"crossList,omitempty"`
	Faculty             []Faculty   `json:"faculty,omitempty"`
	InstructionalMethod string      `json:"instructionalMethod,omitempty"`
	Open                bool        `json:"open"`
	PartOfTerm          string      `json:"partOfTerm,omitempty"`
	SequenceNumber      string      `json:"sequenceNumber,omitempty"`
	SpecialApproval     string      `json:"specialApproval,omitempty"`
	Term                string      `json:"term,omitempty"`
	Meetings            []Meeting   `json:"meetings"`

	// Schedule is derived from Meetings by BuildSchedule and cached here
	Schedule WeeklySchedule `json:"-"`
}

// BuildSchedule (re)derives the cached weekly schedule from the meetings
func (s *Section) BuildSchedule() {
	s.Schedule = NewWeeklySchedule(s.Meetings)
}

// Credits returns the credit hours of the section, falling back to the low bound
func (s *Section) Credits() uint64 {
	if s.CreditHours.Hours != nil {
		return *s.CreditHours.Hours
	}
	if s.CreditHours.Low != nil {
		return *s.CreditHours.Low
	}
	return 0
}

// HasIncompleteMeeting returns true if any meeting has only one of start/end set
func (s *Section) HasIncompleteMeeting() bool {
	for _, meeting := range s.Meetings {
		if meeting.IsIncomplete() {
			return true
		}
	}
	return false
}

// IsFullyTimed returns true if every meeting has concrete start and end times
func (s *Section) IsFullyTimed() bool {
	for _, meeting := range s.Meetings {
		if !meeting.IsTimed() {
			return false
		}
	}
	return true
}

// PrimaryInstructor returns the primary faculty member's name, or the first listed
func (s *Section) PrimaryInstructor() string {
	for _, f := range s.Faculty {
		if f.Primary {
			return f.Name
		}
	}
	if len(s.Faculty) > 0 {
		return s.Faculty[0].Name
	}
	return ""
}

// Catalog maps section keys to sections. It is read-only once built.
type Catalog map[SectionKey]*Section

// NewCatalog indexes sections by key and builds their weekly schedules.
// Returns an error on duplicate keys.
func NewCatalog(sections []*Section) (Catalog, error) {
	catalog := make(Catalog, len(sections))
	for _, section := range sections {
		if _, exists := catalog[section.Key]; exists {
			return nil, fmt.Errorf("duplicate section key %d", section.Key)
		}
		section.BuildSchedule()
		catalog[section.Key] = section
	}
	return catalog, nil
}

// Get looks up a section by key
func (c Catalog) Get(key SectionKey) (*Section, bool) {
	section, ok := c[key]
	return section, ok
}

// MustGet looks up a section that is known to exist. A miss is a data consistency bug.
func (c Catalog) MustGet(key SectionKey) *Section {
	section, ok := c[key]
	if !ok {
		panic(fmt.Sprintf("section %d not in catalog", key))
	}
	return section
}

// Sorted returns all sections in ascending key order
func (c Catalog) Sorted() []*Section {
	sections := make([]*Section, 0, len(c))
	for _, section := range c {
		sections = append(sections, section)
	}
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Key < sections[j].Key
	})
	return sections
}
