// Package servicetest holds in-memory stores for service and handler tests.
package servicetest

import (
	"context"
	"fmt"
	"sort"

	"worklog/internal/model"
	"worklog/internal/repository"
)

// Users is an in-memory UserStore.
type Users struct {
	ByID   map[int64]*model.User
	NextID int64
}

func NewUsers() *Users {
	return &Users{ByID: map[int64]*model.User{}}
}

func (f *Users) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.ByID {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.NextID++
	u.ID = f.NextID
	cp := *u
	f.ByID[u.ID] = &cp
	return nil
}

func (f *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.ByID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *Users) FindByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := f.ByID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

type Projects struct {
	ByID    map[int64]*model.Project
	NextID  int64
	Deleted []int64
}

func NewProjects(ids ...int64) *Projects {
	f := &Projects{ByID: map[int64]*model.Project{}}
	for _, id := range ids {
		f.ByID[id] = &model.Project{ID: id, Name: "p", Status: model.DefaultProjectStatus}
		if id > f.NextID {
			f.NextID = id
		}
	}
	return f
}

func (f *Projects) List(context.Context) ([]model.ProjectSummary, error) {
	out := make([]model.ProjectSummary, 0, len(f.ByID))
	for _, p := range f.ByID {
		out = append(out, model.ProjectSummary{Project: *p})
	}
	return out, nil
}

func (f *Projects) GetDetail(_ context.Context, id int64) (*model.ProjectDetail, error) {
	p, ok := f.ByID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.ProjectDetail{Project: *p, Phases: []model.Phase{}}, nil
}

func (f *Projects) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f.ByID[id]
	return ok, nil
}

func (f *Projects) Create(_ context.Context, ownerID int64, in model.CreateProjectInput) (*model.Project, error) {
	f.NextID++
	p := &model.Project{ID: f.NextID, Name: in.Name, UserID: ownerID, Status: in.Status, Description: in.Description}
	f.ByID[p.ID] = p
	return p, nil
}

func (f *Projects) Update(_ context.Context, id, _ int64, in model.UpdateProjectInput) (*model.Project, error) {
	p, ok := f.ByID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Name.Set {
		p.Name = in.Name.Value
	}
	if in.Description.Set {
		p.Description = in.Description.Ptr()
	}
	if in.Status.Set {
		p.Status = in.Status.Value
	}
	return p, nil
}

func (f *Projects) Delete(_ context.Context, id, _ int64) error {
	if _, ok := f.ByID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.ByID, id)
	f.Deleted = append(f.Deleted, id)
	return nil
}

type Phases struct {
	ByID     map[int64]*model.Phase
	NextID   int64
	LogCount map[int64]int64
}

func NewPhases(phases ...model.Phase) *Phases {
	f := &Phases{ByID: map[int64]*model.Phase{}, LogCount: map[int64]int64{}}
	for i := range phases {
		p := phases[i]
		f.ByID[p.ID] = &p
		if p.ID > f.NextID {
			f.NextID = p.ID
		}
	}
	return f
}

func (f *Phases) ListByProject(_ context.Context, projectID int64) ([]model.PhaseSummary, error) {
	out := make([]model.PhaseSummary, 0)
	for _, p := range f.ByID {
		if p.ProjectID == projectID {
			out = append(out, model.PhaseSummary{Phase: *p, TotalWorkLogs: f.LogCount[p.ID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhaseOrder < out[j].PhaseOrder })
	return out, nil
}

func (f *Phases) GetDetail(_ context.Context, id int64) (*model.PhaseDetail, error) {
	p, ok := f.ByID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.PhaseDetail{PhaseSummary: model.PhaseSummary{Phase: *p}}, nil
}

func (f *Phases) Get(_ context.Context, id int64) (*model.Phase, error) {
	p, ok := f.ByID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *Phases) OrderTaken(_ context.Context, projectID int64, order int, excludeID int64) (bool, error) {
	for _, p := range f.ByID {
		if p.ProjectID == projectID && p.PhaseOrder == order && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *Phases) BelongsTo(_ context.Context, phaseID, projectID int64) (bool, error) {
	p, ok := f.ByID[phaseID]
	return ok && p.ProjectID == projectID, nil
}

func (f *Phases) CountWorkLogs(_ context.Context, id int64) (int64, error) {
	return f.LogCount[id], nil
}

func (f *Phases) Create(_ context.Context, _ int64, in model.CreatePhaseInput) (*model.Phase, error) {
	f.NextID++
	p := &model.Phase{
		ID:          f.NextID,
		ProjectID:   in.ProjectID,
		PhaseName:   in.PhaseName,
		Description: in.Description,
		Status:      in.Status,
		PhaseOrder:  in.PhaseOrder,
	}
	f.ByID[p.ID] = p
	return p, nil
}

func (f *Phases) Update(_ context.Context, id, _ int64, in model.UpdatePhaseInput) (*model.Phase, error) {
	p, ok := f.ByID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.PhaseName != nil {
		p.PhaseName = *in.PhaseName
	}
	if in.PhaseOrder != nil {
		p.PhaseOrder = *in.PhaseOrder
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	return p, nil
}

func (f *Phases) Delete(_ context.Context, id, _ int64) error {
	if _, ok := f.ByID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.ByID, id)
	return nil
}

// WorkLogs is an in-memory WorkLogStore; Report is returned by Stats.
type WorkLogs struct {
	ByID       map[int64]*model.WorkLog
	NextID     int64
	Filters    []model.WorkLogFilter
	Report     *model.StatsReport
	StatsCalls int
	// OnStats runs inside Stats, before the report is returned.
	OnStats    func()
}

func NewWorkLogs(logs ...model.WorkLog) *WorkLogs {
	f := &WorkLogs{ByID: map[int64]*model.WorkLog{}}
	for i := range logs {
		w := logs[i]
		f.ByID[w.ID] = &w
		if w.ID > f.NextID {
			f.NextID = w.ID
		}
	}
	return f
}

func (f *WorkLogs) List(_ context.Context, filter model.WorkLogFilter, _ bool) ([]model.WorkLogView, error) {
	f.Filters = append(f.Filters, filter)
	out := make([]model.WorkLogView, 0)
	for _, w := range f.ByID {
		if filter.UserID != nil && w.UserID != *filter.UserID {
			continue
		}
		if filter.ProjectID != nil && w.ProjectID != *filter.ProjectID {
			continue
		}
		out = append(out, model.WorkLogView{WorkLog: *w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *WorkLogs) GetView(_ context.Context, id int64) (*model.WorkLogView, error) {
	w, ok := f.ByID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.WorkLogView{WorkLog: *w}, nil
}

func (f *WorkLogs) Get(_ context.Context, id int64) (*model.WorkLog, error) {
	w, ok := f.ByID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *WorkLogs) Create(_ context.Context, userID int64, in model.CreateWorkLogInput) (*model.WorkLog, error) {
	f.NextID++
	date := model.Today()
	if in.LogDate != nil {
		date = *in.LogDate
	}
	w := &model.WorkLog{
		ID:              f.NextID,
		UserID:          userID,
		ProjectID:       in.ProjectID,
		PhaseID:         in.PhaseID,
		LogDate:         date,
		WorkDescription: in.WorkDescription,
		HoursSpent:      in.HoursSpent,
		Notes:           in.Notes,
	}
	f.ByID[w.ID] = w
	return w, nil
}

func (f *WorkLogs) Update(_ context.Context, id, _ int64, in model.UpdateWorkLogInput) (*model.WorkLog, error) {
	w, ok := f.ByID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.ProjectID.Set {
		w.ProjectID = in.ProjectID.Value
	}
	if in.PhaseID.Set {
		w.PhaseID = in.PhaseID.Ptr()
	}
	if in.WorkDescription.Set {
		w.WorkDescription = in.WorkDescription.Value
	}
	if in.HoursSpent.Set {
		w.HoursSpent = in.HoursSpent.Ptr()
	}
	if in.Notes.Set {
		w.Notes = in.Notes.Ptr()
	}
	if in.LogDate.Set {
		w.LogDate = in.LogDate.Value
	}
	return w, nil
}

func (f *WorkLogs) Delete(_ context.Context, id, _ int64) error {
	if _, ok := f.ByID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.ByID, id)
	return nil
}

func (f *WorkLogs) Stats(context.Context, int64, model.DateRange) (*model.StatsReport, error) {
	f.StatsCalls++
	if f.OnStats != nil {
		f.OnStats()
	}
	if f.Report == nil {
		return &model.StatsReport{ProjectBreakdown: []model.ProjectHours{}}, nil
	}
	return f.Report, nil
}

// StatsCache ignores the date range and keys entries by user only. It versions
// entries like the Redis cache: a Set under an outdated version is dropped.
type StatsCache struct {
	Entries        map[int64]*model.StatsReport
	Invalidated    []int64
	InvalidatedAll int

	global   int64
	users    map[int64]int64
	versions map[int64]string
}

func NewStatsCache() *StatsCache {
	return &StatsCache{
		Entries:  map[int64]*model.StatsReport{},
		users:    map[int64]int64{},
		versions: map[int64]string{},
	}
}

func (c *StatsCache) version(userID int64) string {
	return fmt.Sprintf("%d.%d", c.global, c.users[userID])
}

func (c *StatsCache) Get(_ context.Context, userID int64, _ model.DateRange) (*model.StatsReport, string, bool) {
	v := c.version(userID)
	r, ok := c.Entries[userID]
	if !ok || c.versions[userID] != v {
		return nil, v, false
	}
	return r, v, true
}

func (c *StatsCache) Set(_ context.Context, userID int64, version string, _ model.DateRange, r *model.StatsReport) {
	if version != c.version(userID) {
		return
	}
	c.Entries[userID] = r
	c.versions[userID] = version
}

func (c *StatsCache) Invalidate(_ context.Context, userID int64) {
	c.users[userID]++
	delete(c.Entries, userID)
	c.Invalidated = append(c.Invalidated, userID)
}

func (c *StatsCache) InvalidateAll(context.Context) {
	c.global++
	c.Entries = map[int64]*model.StatsReport{}
	c.InvalidatedAll++
}

type Activity struct {
	Entries         []model.ActivityEntry
	Seen            map[int64]bool
	DroppedProjects []int64
}

func NewActivity() *Activity {
	return &Activity{Seen: map[int64]bool{}}
}

func (f *Activity) Insert(_ context.Context, e *model.ActivityEntry) (bool, error) {
	if f.Seen[e.EventID] {
		return false, nil
	}
	f.Seen[e.EventID] = true
	f.Entries = append(f.Entries, *e)
	return true, nil
}

func (f *Activity) DeleteByProject(_ context.Context, projectID int64) (int64, error) {
	f.DroppedProjects = append(f.DroppedProjects, projectID)
	kept := f.Entries[:0]
	var n int64
	for _, e := range f.Entries {
		if e.ProjectID == projectID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	f.Entries = kept
	return n, nil
}

func (f *Activity) ListByProject(_ context.Context, projectID int64, limit int) ([]model.ActivityEntry, error) {
	out := make([]model.ActivityEntry, 0)
	for _, e := range f.Entries {
		if e.ProjectID == projectID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}
