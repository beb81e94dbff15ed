package command

import (
	"context"
	"sync"

	"github.com/edupulse/student-risk-hub/internal/domain/intervention"
	"github.com/edupulse/student-risk-hub/internal/domain/notification"
	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// In-memory fakes shared by the handler tests.

type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[string]*student.Student
}

func newFakeStudentRepo(students ...*student.Student) *fakeStudentRepo {
	r := &fakeStudentRepo{students: make(map[string]*student.Student)}
	for _, s := range students {
		copied := *s
		r.students[s.ID] = &copied
	}
	return r
}

func (r *fakeStudentRepo) Create(_ context.Context, s *student.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.students {
		if existing.Code == s.Code {
			return shared.ErrStudentAlreadyExists
		}
	}
	copied := *s
	r.students[s.ID] = &copied
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStudentRepo) GetByCode(_ context.Context, code student.Code) (*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.Code == code {
			copied := *s
			return &copied, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (r *fakeStudentRepo) Update(_ context.Context, s *student.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[s.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	copied := *s
	r.students[s.ID] = &copied
	return nil
}

func (r *fakeStudentRepo) List(_ context.Context, _ student.ListOptions) ([]*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*student.Student, 0, len(r.students))
	for _, s := range r.students {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeStudentRepo) ListIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.students))
	for id := range r.students {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeStudentRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.students), nil
}

func (r *fakeStudentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.students, id)
	return nil
}

type fakeAssessmentRepo struct {
	mu sync.Mutex
	// byStudent holds histories, most recent first.
	byStudent map[string][]*risk.Assessment
	createErr error
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{byStudent: make(map[string][]*risk.Assessment)}
}

func (r *fakeAssessmentRepo) Create(_ context.Context, a *risk.Assessment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *a
	r.byStudent[a.StudentID] = append([]*risk.Assessment{&copied}, r.byStudent[a.StudentID]...)
	return nil
}

func (r *fakeAssessmentRepo) LatestForStudent(_ context.Context, studentID string) (*risk.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	history := r.byStudent[studentID]
	if len(history) == 0 {
		return nil, shared.ErrAssessmentNotFound
	}
	copied := *history[0]
	return &copied, nil
}

func (r *fakeAssessmentRepo) HistoryForStudent(_ context.Context, studentID string, limit int) ([]*risk.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	history := r.byStudent[studentID]
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	out := make([]*risk.Assessment, len(history))
	for i, a := range history {
		copied := *a
		out[i] = &copied
	}
	return out, nil
}

func (r *fakeAssessmentRepo) ByRiskLevel(_ context.Context, level risk.RiskLevel) ([]*risk.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*risk.Assessment
	for _, history := range r.byStudent {
		if len(history) > 0 && history[0].RiskLevel == level {
			copied := *history[0]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAssessmentRepo) CountByLevel(_ context.Context) (map[risk.RiskLevel]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[risk.RiskLevel]int)
	for _, history := range r.byStudent {
		if len(history) > 0 {
			out[history[0].RiskLevel]++
		}
	}
	return out, nil
}

func (r *fakeAssessmentRepo) DeleteAllForStudent(_ context.Context, studentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.byStudent[studentID])
	delete(r.byStudent, studentID)
	return n, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*notification.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *n
	r.created = append(r.created, &copied)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.created {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, shared.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) UnreadForRecipient(_ context.Context, recipientID string, _ int) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.created {
		if n.RecipientID == recipientID && !n.Read {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.created {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return shared.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.created {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.created {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

type fakeInterventionRepo struct {
	mu    sync.Mutex
	items map[string]*intervention.Intervention
}

func newFakeInterventionRepo() *fakeInterventionRepo {
	return &fakeInterventionRepo{items: make(map[string]*intervention.Intervention)}
}

func (r *fakeInterventionRepo) Create(_ context.Context, i *intervention.Intervention) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *i
	r.items[i.ID] = &copied
	return nil
}

func (r *fakeInterventionRepo) GetByID(_ context.Context, id string) (*intervention.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.items[id]
	if !ok {
		return nil, shared.ErrInterventionNotFound
	}
	copied := *i
	return &copied, nil
}

func (r *fakeInterventionRepo) Update(_ context.Context, i *intervention.Intervention) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[i.ID]; !ok {
		return shared.ErrInterventionNotFound
	}
	copied := *i
	r.items[i.ID] = &copied
	return nil
}

func (r *fakeInterventionRepo) ByStudent(_ context.Context, studentID string) ([]*intervention.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*intervention.Intervention
	for _, i := range r.items {
		if i.StudentID == studentID {
			copied := *i
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInterventionRepo) OpenByStudent(_ context.Context, studentID string) ([]*intervention.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*intervention.Intervention
	for _, i := range r.items {
		if i.StudentID == studentID && (i.Status == intervention.StatusPending || i.Status == intervention.StatusInProgress) {
			copied := *i
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInterventionRepo) ByTeacher(_ context.Context, teacherID string) ([]*intervention.Intervention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*intervention.Intervention
	for _, i := range r.items {
		if i.TeacherID == teacherID {
			copied := *i
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInterventionRepo) AverageEffectiveness(_ context.Context, typ intervention.Type) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum, n := 0.0, 0
	for _, i := range r.items {
		if i.Effectiveness == nil {
			continue
		}
		if typ != "" && i.Type != typ {
			continue
		}
		sum += *i.Effectiveness
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

type fakeTeacherRepo struct {
	mu       sync.Mutex
	teachers map[string]*student.Teacher
}

func newFakeTeacherRepo(teachers ...*student.Teacher) *fakeTeacherRepo {
	r := &fakeTeacherRepo{teachers: make(map[string]*student.Teacher)}
	for _, t := range teachers {
		copied := *t
		r.teachers[t.ID] = &copied
	}
	return r
}

func (r *fakeTeacherRepo) Create(_ context.Context, t *student.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *t
	r.teachers[t.ID] = &copied
	return nil
}

func (r *fakeTeacherRepo) GetByID(_ context.Context, id string) (*student.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teachers[id]
	if !ok {
		return nil, shared.ErrTeacherNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeacherRepo) Update(_ context.Context, t *student.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teachers[t.ID]; !ok {
		return shared.ErrTeacherNotFound
	}
	copied := *t
	r.teachers[t.ID] = &copied
	return nil
}

func (r *fakeTeacherRepo) List(_ context.Context) ([]*student.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*student.Teacher, 0, len(r.teachers))
	for _, t := range r.teachers {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

type fakeBus struct {
	mu     sync.Mutex
	events []shared.Event
}

func (b *fakeBus) Publish(e shared.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return nil
}

func (b *fakeBus) byType(t shared.EventType) []shared.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []shared.Event
	for _, e := range b.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

type fakeCache struct {
	mu          sync.Mutex
	latest      map[string]*risk.Assessment
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{latest: make(map[string]*risk.Assessment)}
}

func (c *fakeCache) SetLatest(_ context.Context, a *risk.Assessment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest[a.StudentID] = a
	return nil
}

func (c *fakeCache) InvalidateOverview(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}
