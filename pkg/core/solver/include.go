package solver

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// IncludeKind selects how an Include matches sections
type IncludeKind int

const (
	// IncludeSection matches one section by key
	IncludeSection IncludeKind = iota
	// IncludeCourse matches every section of a subject, optionally of one schedule type
	IncludeCourse
	// IncludeAll matches every section
	IncludeAll
)

// Include is a requirement group selector. The final schedule takes exactly one section
// from the sections bound to each include.
type Include struct {
	Kind         IncludeKind
	Key          model.SectionKey
	Subject      string
	ScheduleType string
}

// SectionInclude selects one section by key
func SectionInclude(key model.SectionKey) Include {
	return Include{Kind: IncludeSection, Key: key}
}

// CourseInclude selects sections of a subject. An empty schedule type matches any type.
func CourseInclude(subject, scheduleType string) Include {
	return Include{Kind: IncludeCourse, Subject: subject, ScheduleType: scheduleType}
}

// AllInclude selects every section
func AllInclude() Include {
	return Include{Kind: IncludeAll}
}

// Matches reports whether the section satisfies the selector
func (i Include) Matches(section *model.Section) bool {
	switch i.Kind {
	case IncludeSection:
		return section.Key == i.Key
	case IncludeCourse:
		if section.Subject != i.Subject {
			return false
		}
		return i.ScheduleType == "" || section.ScheduleType == i.ScheduleType
	case IncludeAll:
		return true
	}
	return false
}

// Name renders the include in the same form ParseInclude accepts
func (i Include) Name() string {
	switch i.Kind {
	case IncludeSection:
		return strconv.FormatUint(uint64(i.Key), 10)
	case IncludeCourse:
		if i.ScheduleType != "" {
			return i.Subject + ":" + i.ScheduleType
		}
		return i.Subject
	case IncludeAll:
		return "*"
	}
	return fmt.Sprintf("Include(%d)", i.Kind)
}

func (i Include) String() string {
	return i.Name()
}

// ParseInclude parses an include expression:
//   - "12345"         a section key
//   - "COP3530"       every section of a subject
//   - "COP3530:Lab"   every section of a subject with the given schedule type
//   - "*"             every section
func ParseInclude(text string) (Include, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Include{}, fmt.Errorf("empty include")
	}
	if trimmed == "*" {
		return AllInclude(), nil
	}
	if key, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
		return SectionInclude(model.SectionKey(key)), nil
	}

	subject, scheduleType, _ := strings.Cut(trimmed, ":")
	subject = strings.ToUpper(strings.ReplaceAll(subject, " ", ""))
	if subject == "" {
		return Include{}, fmt.Errorf("include %q has no subject", text)
	}
	return CourseInclude(subject, strings.TrimSpace(scheduleType)), nil
}

// ParseIncludes parses a list of include expressions
func ParseIncludes(texts []string) ([]Include, error) {
	includes := make([]Include, 0, len(texts))
	for i, text := range texts {
		include, err := ParseInclude(text)
		if err != nil {
			return nil, fmt.Errorf("includes[%d]: %w", i, err)
		}
		includes = append(includes, include)
	}
	return includes, nil
}

// SectionFilter is an extra predicate applied to sections of one subject
type SectionFilter func(section *model.Section) bool

// SectionFilterProvider supplies the extra predicate for a subject, or nil if there is none
type SectionFilterProvider interface {
	FilterFor(subject string) SectionFilter
}

// SubjectFilter restricts the sections of a subject. Empty lists place no restriction.
type SubjectFilter struct {
	OpenOnly             bool               `yaml:"openOnly" json:"openOnly"`
	Campuses             []string           `yaml:"campuses,omitempty" json:"campuses,omitempty"`
	InstructionalMethods []string           `yaml:"instructionalMethods,omitempty" json:"instructionalMethods,omitempty"`
	Instructors          []string           `yaml:"instructors,omitempty" json:"instructors,omitempty"`
	ExcludedKeys         []model.SectionKey `yaml:"excludedKeys,omitempty" json:"excludedKeys,omitempty"`
}

// Allows reports whether the section passes every restriction of the filter
func (f SubjectFilter) Allows(section *model.Section) bool {
	if f.OpenOnly && !section.Open {
		return false
	}
	if len(f.Campuses) > 0 && !slices.Contains(f.Campuses, section.Campus) {
		return false
	}
	if len(f.InstructionalMethods) > 0 && !slices.Contains(f.InstructionalMethods, section.InstructionalMethod) {
		return false
	}
	if len(f.Instructors) > 0 && !slices.ContainsFunc(section.Faculty, func(faculty model.Faculty) bool {
		return slices.Contains(f.Instructors, faculty.Name)
	}) {
		return false
	}
	return !slices.Contains(f.ExcludedKeys, section.Key)
}

// SubjectFilters maps subjects to their filters
type SubjectFilters map[string]SubjectFilter

// FilterFor implements SectionFilterProvider
func (s SubjectFilters) FilterFor(subject string) SectionFilter {
	filter, ok := s[subject]
	if !ok {
		return nil
	}
	return filter.Allows
}

// Bucket holds the candidates of one requirement group
type Bucket struct {
	Include Include

	// Candidates are the sections the search chooses from
	Candidates []*model.Section

	// Members are every valid section bound to the include before duplicates were collapsed
	Members []*model.Section

	// Duplicates maps each candidate key to all members with the same meeting layout, itself included
	Duplicates map[model.SectionKey][]*model.Section
}

// Name returns the include name of the bucket
func (b *Bucket) Name() string {
	return b.Include.Name()
}

// IncludeSections binds catalog sections to includes. Each section joins only the first include it
// matches, and only if the provider's filter for its subject (if any) accepts it. Sections matching no
// include are dropped. One bucket is returned per include, in include order.
func IncludeSections(catalog model.Catalog, includes []Include, provider SectionFilterProvider) []*Bucket {
	buckets := make([]*Bucket, len(includes))
	for i, include := range includes {
		buckets[i] = &Bucket{Include: include}
	}

	for _, section := range catalog.Sorted() {
		index := slices.IndexFunc(includes, func(include Include) bool {
			return include.Matches(section)
		})
		if index < 0 {
			continue
		}

		if provider != nil {
			if filter := provider.FilterFor(section.Subject); filter != nil && !filter(section) {
				continue
			}
		}

		buckets[index].Candidates = append(buckets[index].Candidates, section)
	}

	for _, bucket := range buckets {
		bucket.Members = bucket.Candidates
	}

	return buckets
}

// EmptyBuckets returns the names of buckets without candidates
func EmptyBuckets(buckets []*Bucket) []string {
	var names []string
	for _, bucket := range buckets {
		if len(bucket.Candidates) == 0 {
			names = append(names, bucket.Name())
		}
	}
	return names
}
