package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/samber/lo"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// bannerFeed is the registrar's class search response
type bannerFeed struct {
	Data []bannerSection `json:"data"`
}

type bannerSection struct {
	CourseReferenceNumber          string           `json:"courseReferenceNumber"`
	CampusDescription              string           `json:"campusDescription"`
	SubjectCourse                  string           `json:"subjectCourse"`
	SubjectDescription             string           `json:"subjectDescription"`
	CourseNumber                   string           `json:"courseNumber"`
	CourseTitle                    string           `json:"courseTitle"`
	ScheduleTypeDescription        string           `json:"scheduleTypeDescription"`
	CreditHourHigh                 *uint64          `json:"creditHourHigh"`
	CreditHourLow                  *uint64          `json:"creditHourLow"`
	CreditHours                    *uint64          `json:"creditHours"`
	Enrollment                     uint64           `json:"enrollment"`
	MaximumEnrollment              uint64           `json:"maximumEnrollment"`
	SeatsAvailable                 int64            `json:"seatsAvailable"`
	WaitCount                      uint64           `json:"waitCount"`
	WaitCapacity                   uint64           `json:"waitCapacity"`
	WaitAvailable                  int64            `json:"waitAvailable"`
	CrossList                      *string          `json:"crossList"`
	CrossListCount                 uint64           `json:"crossListCount"`
	CrossListCapacity              uint64           `json:"crossListCapacity"`
	CrossListAvailable             int64            `json:"crossListAvailable"`
	Faculty                        []bannerFaculty  `json:"faculty"`
	MeetingsFaculty                []bannerMeetings `json:"meetingsFaculty"`
	InstructionalMethodDescription string           `json:"instructionalMethodDescription"`
	OpenSection                    bool             `json:"openSection"`
	PartOfTermDescription          string           `json:"partOfTermDescription"`
	SequenceNumber                 string           `json:"sequenceNumber"`
	SpecialApprovalDescription     *string          `json:"specialApprovalDescription"`
	TermDesc                       string           `json:"termDesc"`
}

type bannerFaculty struct {
	DisplayName      string  `json:"displayName"`
	EmailAddress     *string `json:"emailAddress"`
	PrimaryIndicator bool    `json:"primaryIndicator"`
}

type bannerMeetings struct {
	MeetingTime bannerMeetingTime `json:"meetingTime"`
}

type bannerMeetingTime struct {
	BeginTime              *string `json:"beginTime"`
	EndTime                *string `json:"endTime"`
	StartDate              string  `json:"startDate"`
	EndDate                string  `json:"endDate"`
	Building               *string `json:"building"`
	BuildingDescription    *string `json:"buildingDescription"`
	Room                   *string `json:"room"`
	MeetingTypeDescription string  `json:"meetingTypeDescription"`
	Sunday                 bool    `json:"sunday"`
	Monday                 bool    `json:"monday"`
	Tuesday                bool    `json:"tuesday"`
	Wednesday              bool    `json:"wednesday"`
	Thursday               bool    `json:"thursday"`
	Friday                 bool    `json:"friday"`
	Saturday               bool    `json:"saturday"`
}

// ConvertBanner converts the registrar's raw class search feed into sections.
// Meeting times that cannot be parsed are left absent. Sections are returned in feed order;
// the term is taken from the first section.
func ConvertBanner(r io.Reader) ([]*model.Section, string, error) {
	var feed bannerFeed
	if err := json.NewDecoder(r).Decode(&feed); err != nil {
		return nil, "", fmt.Errorf("failed to decode banner feed: %w", err)
	}

	sections := make([]*model.Section, 0, len(feed.Data))
	for i, raw := range feed.Data {
		section, err := raw.toSection()
		if err != nil {
			return nil, "", fmt.Errorf("data[%d]: %w", i, err)
		}
		sections = append(sections, section)
	}

	var term string
	if len(feed.Data) > 0 {
		term = feed.Data[0].TermDesc
	}
	return sections, term, nil
}

func (b bannerSection) toSection() (*model.Section, error) {
	key, err := strconv.ParseUint(b.CourseReferenceNumber, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid course reference number %q: %w", b.CourseReferenceNumber, err)
	}

	section := &model.Section{
		Key:                model.SectionKey(key),
		Campus:             b.CampusDescription,
		Subject:            b.SubjectCourse,
		SubjectDescription: b.SubjectDescription,
		CourseNumber:       b.CourseNumber,
		Title:              b.CourseTitle,
		ScheduleType:       b.ScheduleTypeDescription,
		CreditHours: model.CreditHours{
			High:  b.CreditHourHigh,
			Low:   b.CreditHourLow,
			Hours: b.CreditHours,
		},
		Enrollment: model.Enrollment{
			Count:     b.Enrollment,
			Capacity:  b.MaximumEnrollment,
			Available: b.SeatsAvailable,
		},
		WaitList: model.Enrollment{
			Count:     b.WaitCount,
			Capacity:  b.WaitCapacity,
			Available: b.WaitAvailable,
		},
		Faculty: lo.Map(b.Faculty, func(f bannerFaculty, _ int) model.Faculty {
			return model.Faculty{Name: f.DisplayName, Email: lo.FromPtr(f.EmailAddress), Primary: f.PrimaryIndicator}
		}),
		InstructionalMethod: b.InstructionalMethodDescription,
		Open:                b.OpenSection,
		PartOfTerm:          b.PartOfTermDescription,
		SequenceNumber:      b.SequenceNumber,
		SpecialApproval:     lo.FromPtr(b.SpecialApprovalDescription),
		Term:                b.TermDesc,
		Meetings: lo.Map(b.MeetingsFaculty, func(m bannerMeetings, _ int) model.Meeting {
			return m.MeetingTime.toMeeting()
		}),
	}

	if b.CrossList != nil && *b.CrossList != "" {
		section.CrossList = &model.CrossList{
			Group: *b.CrossList,
			Enrollment: model.Enrollment{
				Count:     b.CrossListCount,
				Capacity:  b.CrossListCapacity,
				Available: b.CrossListAvailable,
			},
		}
	}

	return section, nil
}

func (m bannerMeetingTime) toMeeting() model.Meeting {
	flags := []bool{m.Sunday, m.Monday, m.Tuesday, m.Wednesday, m.Thursday, m.Friday, m.Saturday}
	var days model.DaySet
	for day, set := range flags {
		if set {
			days = days.Union(model.NewDaySet(model.Day(day)))
		}
	}

	return model.Meeting{
		Start:        parseOptionalTime(m.BeginTime),
		End:          parseOptionalTime(m.EndTime),
		Days:         days,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		BuildingCode: lo.FromPtr(m.Building),
		BuildingName: lo.FromPtr(m.BuildingDescription),
		Room:         lo.FromPtr(m.Room),
		MeetingType:  m.MeetingTypeDescription,
	}
}

func parseOptionalTime(text *string) *model.Time {
	if text == nil {
		return nil
	}
	t, err := model.ParseTime(*text)
	if err != nil {
		return nil
	}
	return &t
}
