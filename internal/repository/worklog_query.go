package repository

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"worklog/internal/model"
)

// workLogColumns are scanned by scanWorkLog in this order.
var workLogColumns = []string{
	"wl.id", "wl.user_id", "wl.project_id", "wl.phase_id", "wl.log_date",
	"wl.work_description", "wl.hours_spent", "wl.notes", "wl.created_at",
}

// workLogListOrder is the deterministic listing order, newest day first.
var workLogListOrder = []string{"wl.log_date DESC", "wl.created_at DESC", "wl.id DESC"}

// buildWorkLogSelect joins projects and phases, plus the author when withUser.
func buildWorkLogSelect(withUser bool) sq.SelectBuilder {
	cols := append([]string{}, workLogColumns...)
	if withUser {
		cols = append(cols, "u.full_name AS user_name", "u.email AS user_email")
	}
	cols = append(cols, "p.name AS project_name", "ph.phase_name")

	q := psql.Select(cols...).From("work_logs wl")
	if withUser {
		q = q.LeftJoin("users u ON wl.user_id = u.id")
	}
	return q.LeftJoin("projects p ON wl.project_id = p.id").
		LeftJoin("phases ph ON wl.phase_id = ph.id")
}

// buildWorkLogList ANDs one predicate per present filter onto the joined select.
func buildWorkLogList(f model.WorkLogFilter, withUser bool) sq.SelectBuilder {
	return applyWorkLogFilter(buildWorkLogSelect(withUser), "wl.", f).OrderBy(workLogListOrder...)
}

func buildWorkLogByID(id int64) sq.SelectBuilder {
	return buildWorkLogSelect(true).Where(sq.Eq{"wl.id": id})
}

// applyWorkLogFilter appends predicates in a fixed order so equal filters compile to equal SQL.
func applyWorkLogFilter(q sq.SelectBuilder, prefix string, f model.WorkLogFilter) sq.SelectBuilder {
	if f.ProjectID != nil {
		q = q.Where(sq.Eq{prefix + "project_id": *f.ProjectID})
	}
	if f.PhaseID != nil {
		q = q.Where(sq.Eq{prefix + "phase_id": *f.PhaseID})
	}
	if f.UserID != nil {
		q = q.Where(sq.Eq{prefix + "user_id": *f.UserID})
	}
	if f.StartDate != nil {
		q = q.Where(sq.GtOrEq{prefix + "log_date": f.StartDate.String()})
	}
	if f.EndDate != nil {
		q = q.Where(sq.LtOrEq{prefix + "log_date": f.EndDate.String()})
	}
	return q
}

func userRangeFilter(userID int64, r model.DateRange) model.WorkLogFilter {
	return model.WorkLogFilter{UserID: &userID, StartDate: r.StartDate, EndDate: r.EndDate}
}

// buildStatsTotals: null hours sum as zero, but their rows still count as logs.
func buildStatsTotals(userID int64, r model.DateRange) sq.SelectBuilder {
	q := psql.Select(
		"COUNT(*) AS total_logs",
		"COALESCE(SUM(wl.hours_spent), 0)::float8 AS total_hours",
		"COUNT(DISTINCT wl.project_id) AS projects_worked_on",
		"COUNT(DISTINCT wl.log_date) AS days_logged",
	).From("work_logs wl")
	return applyWorkLogFilter(q, "wl.", userRangeFilter(userID, r))
}

// buildProjectBreakdown groups the same rows per project, largest total first.
func buildProjectBreakdown(userID int64, r model.DateRange) sq.SelectBuilder {
	q := psql.Select(
		"p.id",
		"p.name AS project_name",
		"COUNT(wl.id) AS log_count",
		"COALESCE(SUM(wl.hours_spent), 0)::float8 AS total_hours",
	).From("work_logs wl").
		Join("projects p ON wl.project_id = p.id")
	return applyWorkLogFilter(q, "wl.", userRangeFilter(userID, r)).
		GroupBy("p.id", "p.name").
		OrderBy("total_hours DESC", "p.id ASC")
}

// buildWorkLogUpdate sets only the members present in the payload.
// ok is false when nothing would change.
func buildWorkLogUpdate(id int64, in model.UpdateWorkLogInput) (q sq.UpdateBuilder, ok bool) {
	q = psql.Update("work_logs")
	n := 0
	set := func(col string, v any) {
		q = q.Set(col, v)
		n++
	}

	if in.ProjectID.Set {
		set("project_id", in.ProjectID.Ptr())
	}
	if in.PhaseID.Set {
		set("phase_id", in.PhaseID.Ptr())
	}
	if in.LogDate.Set {
		set("log_date", model.DateArg(in.LogDate.Ptr()))
	}
	if in.WorkDescription.Set {
		set("work_description", strings.TrimSpace(in.WorkDescription.Value))
	}
	if in.HoursSpent.Set {
		set("hours_spent", in.HoursSpent.Ptr())
	}
	if in.Notes.Set {
		set("notes", trimmedOrNil(in.Notes.Ptr()))
	}

	q = q.Where(sq.Eq{"id": id}).Suffix("RETURNING " + strings.Join(unqualified(workLogColumns), ", "))
	return q, n > 0
}

// buildProjectUpdate mirrors buildWorkLogUpdate for projects.
func buildProjectUpdate(id int64, in model.UpdateProjectInput) (q sq.UpdateBuilder, ok bool) {
	q = psql.Update("projects")
	n := 0
	set := func(col string, v any) {
		q = q.Set(col, v)
		n++
	}

	if in.Name.Set {
		set("name", strings.TrimSpace(in.Name.Value))
	}
	if in.Description.Set {
		set("description", in.Description.Ptr())
	}
	if in.ProjectManagerID.Set {
		set("project_manager_id", in.ProjectManagerID.Ptr())
	}
	if in.Status.Set {
		set("status", in.Status.Value)
	}
	if in.StartDate.Set {
		set("start_date", model.DateArg(in.StartDate.Ptr()))
	}
	if in.EndDate.Set {
		set("end_date", model.DateArg(in.EndDate.Ptr()))
	}

	q = q.Where(sq.Eq{"id": id}).Suffix("RETURNING " + projectColumns)
	return q, n > 0
}

func unqualified(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.TrimPrefix(c, "wl.")
	}
	return out
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
