package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"breaktime.service/internal/core/model"
	"breaktime.service/internal/ports/repository"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory repository.Repository that enforces the same uniqueness
// rules as the SQL schema. The fail* fields inject failures into single operations.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	employees map[int64]model.Employee
	active    map[int64]model.ActiveBreak
	records   []model.BreakRecord

	failLookup       error
	failFindActive   error
	failCreateActive error
	failCreateRecord error
	failDelete       error
	deleteNoop       bool
	failCount        error
	countOverride    *int
	failList         error
	failGetEmployee  error
}

var _ repository.Repository = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		employees: map[int64]model.Employee{},
		active:    map[int64]model.ActiveBreak{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addEmployee(name, badge, code string) model.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := model.Employee{ID: m.id(), Name: name, Badge: badge, Code: code, Shift: model.ShiftFull}
	m.employees[e.ID] = e
	return e
}

func (m *memStore) activeFor(employeeID int64) []model.ActiveBreak {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ActiveBreak
	for _, ab := range m.active {
		if ab.EmployeeID == employeeID {
			out = append(out, ab)
		}
	}
	return out
}

func (m *memStore) recordsFor(employeeID int64) []model.BreakRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BreakRecord
	for _, r := range m.records {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) FindEmployeeByBadge(_ context.Context, badge string) (*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLookup != nil {
		return nil, m.failLookup
	}
	for _, e := range m.sortedEmployees() {
		if e.Badge == badge {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindEmployeeByCode(_ context.Context, code string) (*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLookup != nil {
		return nil, m.failLookup
	}
	for _, e := range m.employees {
		if e.Code == code {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetEmployee(_ context.Context, id int64) (*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGetEmployee != nil {
		return nil, m.failGetEmployee
	}
	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memStore) sortedEmployees() []model.Employee {
	out := make([]model.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) ListEmployees(context.Context) ([]model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sortedEmployees()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) codeTaken(code string, except int64) bool {
	for _, e := range m.employees {
		if e.Code == code && e.ID != except {
			return true
		}
	}
	return false
}

func (m *memStore) CreateEmployee(_ context.Context, e model.Employee) (*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codeTaken(e.Code, 0) {
		return nil, repository.ErrDuplicateEmployeeCode
	}
	e.ID = m.id()
	m.employees[e.ID] = e
	return &e, nil
}

func (m *memStore) UpdateEmployee(_ context.Context, e model.Employee) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[e.ID]; !ok {
		return false, nil
	}
	if m.codeTaken(e.Code, e.ID) {
		return false, repository.ErrDuplicateEmployeeCode
	}
	m.employees[e.ID] = e
	return true, nil
}

func (m *memStore) DeleteEmployee(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return false, nil
	}
	for _, rec := range m.records {
		if rec.EmployeeID == id {
			return false, repository.ErrEmployeeHasHistory
		}
	}
	for abID, ab := range m.active {
		if ab.EmployeeID == id {
			delete(m.active, abID)
		}
	}
	delete(m.employees, id)
	return true, nil
}

func (m *memStore) FindActiveBreak(_ context.Context, employeeID int64) (*model.ActiveBreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFindActive != nil {
		return nil, m.failFindActive
	}
	var found *model.ActiveBreak
	for _, ab := range m.active {
		if ab.EmployeeID != employeeID {
			continue
		}
		if found == nil || ab.StartedAt.Before(found.StartedAt) {
			ab := ab
			found = &ab
		}
	}
	return found, nil
}

func (m *memStore) GetActiveBreak(_ context.Context, id int64) (*model.ActiveBreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ab, ok := m.active[id]
	if !ok {
		return nil, nil
	}
	return &ab, nil
}

func (m *memStore) CreateActiveBreak(_ context.Context, employeeID int64, start time.Time) (*model.ActiveBreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateActive != nil {
		return nil, m.failCreateActive
	}
	for _, ab := range m.active {
		if ab.EmployeeID == employeeID {
			return nil, repository.ErrActiveBreakExists
		}
	}
	ab := model.ActiveBreak{ID: m.id(), EmployeeID: employeeID, StartedAt: start.UTC(), Category: model.CategoryPending}
	m.active[ab.ID] = ab
	return &ab, nil
}

// insertActive bypasses the uniqueness rule to model rows left behind by older data.
func (m *memStore) insertActive(employeeID int64, start time.Time) model.ActiveBreak {
	m.mu.Lock()
	defer m.mu.Unlock()
	ab := model.ActiveBreak{ID: m.id(), EmployeeID: employeeID, StartedAt: start.UTC(), Category: model.CategoryPending}
	m.active[ab.ID] = ab
	return ab
}

func (m *memStore) DeleteActiveBreak(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil {
		return false, m.failDelete
	}
	if m.deleteNoop {
		return false, nil
	}
	if _, ok := m.active[id]; !ok {
		return false, nil
	}
	delete(m.active, id)
	return true, nil
}

func (m *memStore) CountActiveBreaks(_ context.Context, employeeID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCount != nil {
		return 0, m.failCount
	}
	if m.countOverride != nil {
		return *m.countOverride, nil
	}
	n := 0
	for _, ab := range m.active {
		if ab.EmployeeID == employeeID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListActiveBreaks(context.Context) ([]model.ActiveBreak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	out := make([]model.ActiveBreak, 0, len(m.active))
	for _, ab := range m.active {
		out = append(out, ab)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (m *memStore) CreateBreakRecord(_ context.Context, rec model.BreakRecord) (*model.BreakRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateRecord != nil {
		return nil, m.failCreateRecord
	}
	for _, r := range m.records {
		if r.ActiveBreakID == rec.ActiveBreakID {
			return nil, repository.ErrBreakAlreadyClosed
		}
	}
	rec.ID = m.id()
	m.records = append(m.records, rec)
	return &rec, nil
}

func (m *memStore) ListBreakRecords(_ context.Context, f model.RecordFilter) ([]model.BreakRecordView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.BreakRecordView
	for _, r := range m.records {
		if r.Date < f.From || r.Date > f.To {
			continue
		}
		if f.EmployeeID != 0 && r.EmployeeID != f.EmployeeID {
			continue
		}
		e := m.employees[r.EmployeeID]
		out = append(out, model.BreakRecordView{BreakRecord: r, EmployeeName: e.Name, EmployeeCode: e.Code, EmployeeShift: e.Shift})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].StartTime > out[j].StartTime
	})
	return out, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu      sync.Mutex
	exports []interface{}
	alerts  []interface{}
	err     error
}

func (p *recordingPublisher) PublishExport(_ context.Context, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exports = append(p.exports, body)
	return p.err
}

func (p *recordingPublisher) PublishAlert(_ context.Context, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, body)
	return p.err
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
