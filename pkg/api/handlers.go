package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/jakechorley/class-scheduler/internal/config"
	"github.com/jakechorley/class-scheduler/pkg/core/constraints"
	"github.com/jakechorley/class-scheduler/pkg/core/model"
	"github.com/jakechorley/class-scheduler/pkg/core/scoring"
	"github.com/jakechorley/class-scheduler/pkg/core/services"
	"github.com/jakechorley/class-scheduler/pkg/core/solver"
	"github.com/jakechorley/class-scheduler/pkg/db"
	"github.com/jakechorley/class-scheduler/pkg/exporter"
)

const (
	defaultSubjectLimit = 10
	defaultRunCount     = 20
)

type solveBody struct {
	Term        string                `json:"term"`
	Includes    []string              `json:"includes" binding:"required,min=1,dive,required"`
	Constraints []map[string]any      `json:"constraints"`
	Priorities  scoring.Priorities    `json:"priorities"`
	Tuning      scoring.Tuning        `json:"tuning"`
	Filters     solver.SubjectFilters `json:"subjectFilters"`
	Limit       *int                  `json:"limit" binding:"omitempty,min=0"`
	Workers     int                   `json:"workers" binding:"min=0,max=256"`
	NodeBudget  uint64                `json:"nodeBudget"`
	DryRun      bool                  `json:"dryRun"`
}

type sectionView struct {
	Key          model.SectionKey   `json:"key"`
	Subject      string             `json:"subject"`
	Title        string             `json:"title"`
	ScheduleType string             `json:"scheduleType"`
	Alternates   []model.SectionKey `json:"alternates,omitempty"`
}

type scheduleView struct {
	Rank      int               `json:"rank"`
	Sections  []sectionView     `json:"sections"`
	Score     float64           `json:"score"`
	Breakdown scoring.Breakdown `json:"breakdown"`
	Credits   uint64            `json:"credits"`
}

type solveView struct {
	RunID        string         `json:"runId,omitempty"`
	Term         string         `json:"term"`
	Found        uint64         `json:"found"`
	Truncated    bool           `json:"truncated"`
	EmptyBuckets []string       `json:"emptyBuckets,omitempty"`
	Stats        solver.Stats   `json:"stats"`
	Schedules    []scheduleView `json:"schedules"`
}

type runScheduleView struct {
	Rank        int                `json:"rank"`
	SectionKeys []model.SectionKey `json:"sectionKeys"`
	Score       float64            `json:"score"`
	Breakdown   scoring.Breakdown  `json:"breakdown"`
	Credits     uint64             `json:"credits"`
}

type runView struct {
	ID          string             `json:"id"`
	TermID      string             `json:"termId,omitempty"`
	Includes    []string           `json:"includes"`
	Constraints []constraints.Spec `json:"constraints,omitempty"`
	Priorities  scoring.Priorities `json:"priorities"`
	Found       uint64             `json:"found"`
	CreatedAt   string             `json:"createdAt"`
	Kept        int                `json:"kept"`
	Best        *runScheduleView   `json:"best,omitempty"`
	Schedules   []runScheduleView  `json:"schedules,omitempty"`
}

type termView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ImportedAt   string `json:"importedAt"`
	SectionCount int    `json:"sectionCount"`
}

func (s *Server) solve(c *gin.Context) {
	var body solveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, invalid(err, "invalid payload"))
		return
	}

	specs, err := constraints.DecodeSpecs(body.Constraints)
	if err != nil {
		respondError(c, invalid(err, err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.options.Timeout)
	defer cancel()

	term, sections, err := s.catalog(ctx, body.Term)
	if err != nil {
		respondError(c, err)
		return
	}

	request := services.SolveRequest{
		Term:        term,
		Includes:    body.Includes,
		Constraints: specs,
		Priorities:  body.Priorities,
		Tuning:      body.Tuning,
		Filters:     body.Filters,
		Search:      s.searchFor(body),
		DryRun:      body.DryRun,
	}

	generated, err := services.GenerateSchedules(ctx, s.store, sections, request, s.logger, s.options.Metrics)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, newSolveView(term, generated), nil)
}

// searchFor applies the server's search bounds to fields the body leaves unset
func (s *Server) searchFor(body solveBody) config.SearchConfig {
	search := s.options.Search
	if body.Limit != nil {
		search.Limit = body.Limit
	}
	if body.Workers > 0 {
		search.Workers = body.Workers
	}
	if body.NodeBudget > 0 && (search.NodeBudget == 0 || body.NodeBudget < search.NodeBudget) {
		search.NodeBudget = body.NodeBudget
	}
	return search
}

func newSolveView(term string, generated *services.GenerateResult) solveView {
	result := generated.Result
	view := solveView{
		Term:         term,
		Found:        result.Found,
		Truncated:    generated.Truncated,
		EmptyBuckets: result.EmptyBuckets,
		Stats:        result.Stats,
		Schedules:    make([]scheduleView, 0, len(result.Schedules)),
	}
	if generated.Run != nil {
		view.RunID = generated.Run.ID
	}

	for i, schedule := range result.Schedules {
		alternates := result.Alternates(schedule)
		view.Schedules = append(view.Schedules, scheduleView{
			Rank: i + 1,
			Sections: lo.Map(schedule.Sections, func(section *model.Section, j int) sectionView {
				return sectionView{
					Key:          section.Key,
					Subject:      section.Subject,
					Title:        section.Title,
					ScheduleType: section.ScheduleType,
					Alternates: lo.Map(alternates[j], func(alt *model.Section, _ int) model.SectionKey {
						return alt.Key
					}),
				}
			}),
			Score:     schedule.Score,
			Breakdown: schedule.Breakdown,
			Credits:   schedule.Credits,
		})
	}
	return view
}

func (s *Server) listTerms(c *gin.Context) {
	terms, err := s.store.GetTerms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, lo.Map(terms, func(term db.Term, _ int) termView {
		return termView{ID: term.ID, Name: term.Name, ImportedAt: term.ImportedAt, SectionCount: term.SectionCount}
	}), nil)
}

func (s *Server) getSection(c *gin.Context) {
	key, err := strconv.ParseUint(c.Param("key"), 10, 64)
	if err != nil {
		respondError(c, invalid(err, "section key must be a number"))
		return
	}

	term, sections, err := s.catalog(c.Request.Context(), c.Query("term"))
	if err != nil {
		respondError(c, err)
		return
	}

	section, ok := sections.Get(model.SectionKey(key))
	if !ok {
		respondError(c, fmt.Errorf("section %d in %q: %w", key, term, solver.ErrUnknownSection))
		return
	}
	respond(c, http.StatusOK, section, map[string]any{"term": term})
}

func (s *Server) topSubjects(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSubjectLimit)))
	if err != nil || limit < 0 {
		respondError(c, NewError(ErrValidation.Code, ErrValidation.Status, "limit must be a non-negative number"))
		return
	}

	term, sections, err := s.catalog(c.Request.Context(), c.Query("term"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, services.TopSubjects(sections, s.logger, limit), map[string]any{"term": term})
}

func (s *Server) freeRooms(c *gin.Context) {
	days, err := model.ParseDaySet(c.Query("day"))
	if err != nil || len(days.Days()) != 1 {
		respondError(c, NewError(ErrValidation.Code, ErrValidation.Status, "day must name exactly one weekday"))
		return
	}
	at, err := model.ParseTime(c.Query("at"))
	if err != nil {
		respondError(c, invalid(err, err.Error()))
		return
	}

	term, sections, err := s.catalog(c.Request.Context(), c.Query("term"))
	if err != nil {
		respondError(c, err)
		return
	}

	free := services.FreeRooms(sections, s.logger, days.Days()[0], at)
	respond(c, http.StatusOK, free, map[string]any{"term": term, "day": days.Days()[0].String(), "at": at.String()})
}

func (s *Server) listRuns(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", strconv.Itoa(defaultRunCount)))
	if err != nil || count < 0 {
		respondError(c, NewError(ErrValidation.Code, ErrValidation.Status, "count must be a non-negative number"))
		return
	}

	summaries, err := services.ViewRunHistory(c.Request.Context(), s.store, s.logger, count)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, lo.Map(summaries, func(summary services.RunSummary, _ int) runView {
		view := newRunView(summary.Run)
		view.Kept = summary.Kept
		if summary.Best != nil {
			best := newRunScheduleView(*summary.Best)
			view.Best = &best
		}
		return view
	}), nil)
}

func (s *Server) getRun(c *gin.Context) {
	run, schedules, err := s.store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	view := newRunView(*run)
	view.Kept = len(schedules)
	view.Schedules = lo.Map(schedules, func(schedule db.RunSchedule, _ int) runScheduleView {
		return newRunScheduleView(schedule)
	})
	respond(c, http.StatusOK, view, nil)
}

func (s *Server) exportSchedule(c *gin.Context) {
	rank, err := strconv.Atoi(c.Param("rank"))
	if err != nil || rank < 1 {
		respondError(c, NewError(ErrValidation.Code, ErrValidation.Status, "rank must be a positive number"))
		return
	}

	ctx := c.Request.Context()
	termName, err := s.runTerm(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if query := c.Query("term"); query != "" {
		termName = query
	}

	term, sections, err := s.catalog(ctx, termName)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	options := exporter.Options{Location: s.options.Location, Name: term}
	if _, err := services.ExportRunSchedule(ctx, s.store, sections, s.logger, c.Param("id"), rank, &buf, options); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=schedule-%d.ics", rank))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// runTerm returns the name of the term a run was solved against, or "" when it was not recorded
func (s *Server) runTerm(ctx context.Context, runID string) (string, error) {
	run, _, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	if run.TermID == "" {
		return "", nil
	}

	terms, err := s.store.GetTerms(ctx)
	if err != nil {
		return "", err
	}
	term, _ := lo.Find(terms, func(t db.Term) bool { return t.ID == run.TermID })
	return term.Name, nil
}

func newRunView(run db.SolveRun) runView {
	return runView{
		ID:          run.ID,
		TermID:      run.TermID,
		Includes:    run.Includes,
		Constraints: run.Constraints,
		Priorities:  run.Priorities,
		Found:       run.Found,
		CreatedAt:   run.CreatedAt,
	}
}

func newRunScheduleView(schedule db.RunSchedule) runScheduleView {
	return runScheduleView{
		Rank:        schedule.Rank,
		SectionKeys: schedule.SectionKeys,
		Score:       schedule.Score,
		Breakdown:   schedule.Breakdown,
		Credits:     schedule.Credits,
	}
}
