package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/domain"
	"alcyxob/coach-core/internal/repository"
	"alcyxob/coach-core/internal/storage"
)

// In-memory repositories shared by the service tests.

type fakeProgramRepo struct {
	mu       sync.Mutex
	programs []domain.Program
	fail     map[primitive.ObjectID]error // read errors per user
}

func (r *fakeProgramRepo) Create(_ context.Context, p *domain.Program) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	r.programs = append(r.programs, *p)
	return p.ID, nil
}

func (r *fakeProgramRepo) GetActiveByUser(_ context.Context, userID primitive.ObjectID) (*domain.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[userID]; err != nil {
		return nil, err
	}
	var best *domain.Program
	for i := range r.programs {
		p := r.programs[i]
		if p.UserID == userID && p.Status == domain.ProgramActive && (best == nil || p.Version > best.Version) {
			best = &p
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return best, nil
}

func (r *fakeProgramRepo) GetLatestVersion(_ context.Context, userID primitive.ObjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := 0
	for _, p := range r.programs {
		if p.UserID == userID && p.Version > latest {
			latest = p.Version
		}
	}
	return latest, nil
}

func (r *fakeProgramRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Program
	for _, p := range r.programs {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (r *fakeProgramRepo) SupersedeActive(_ context.Context, userID, keepID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.programs {
		p := &r.programs[i]
		if p.UserID == userID && p.ID != keepID && p.Status == domain.ProgramActive {
			p.Status = domain.ProgramSuperseded
		}
	}
	return nil
}

func (r *fakeProgramRepo) DistinctActiveUsers(_ context.Context) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[primitive.ObjectID]bool{}
	var out []primitive.ObjectID
	for _, p := range r.programs {
		if p.Status == domain.ProgramActive && !seen[p.UserID] {
			seen[p.UserID] = true
			out = append(out, p.UserID)
		}
	}
	return out, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles []domain.WeightsProfile
	fail     map[primitive.ObjectID]error
}

func (r *fakeProfileRepo) Create(_ context.Context, p *domain.WeightsProfile) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	r.profiles = append(r.profiles, *p)
	return p.ID, nil
}

func (r *fakeProfileRepo) GetLatestByUser(_ context.Context, userID primitive.ObjectID) (*domain.WeightsProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[userID]; err != nil {
		return nil, err
	}
	var best *domain.WeightsProfile
	for i := range r.profiles {
		p := r.profiles[i]
		if p.UserID == userID && (best == nil || p.Version > best.Version) {
			best = &p
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return best, nil
}

type fakeCalendarRepo struct {
	mu     sync.Mutex
	events []domain.CalendarEvent
}

func (r *fakeCalendarRepo) CreateMany(_ context.Context, events []domain.CalendarEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range events {
		e.ID = primitive.NewObjectID()
		r.events = append(r.events, e)
	}
	return nil
}

func (r *fakeCalendarRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCalendarRepo) ListUpcoming(_ context.Context, userID primitive.ObjectID, from time.Time, limit int64) ([]domain.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CalendarEvent
	for _, e := range r.events {
		if e.UserID == userID && e.Status == domain.EventScheduled && !e.StartAt.Before(from) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCalendarRepo) ListInRange(_ context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CalendarEvent
	for _, e := range r.events {
		if e.UserID == userID && !e.StartAt.Before(from) && !e.StartAt.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeCalendarRepo) DeleteScheduledFrom(_ context.Context, userID primitive.ObjectID, from time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	var deleted int64
	for _, e := range r.events {
		if e.UserID == userID && e.Status == domain.EventScheduled && !e.StartAt.Before(from) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return deleted, nil
}

func (r *fakeCalendarRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.EventStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].ID == id {
			r.events[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeCalendarRepo) forUser(userID primitive.ObjectID) []domain.CalendarEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CalendarEvent
	for _, e := range r.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

type fakeInstanceRepo struct {
	mu        sync.Mutex
	instances []domain.WorkoutInstance
}

func (r *fakeInstanceRepo) Create(_ context.Context, inst *domain.WorkoutInstance) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst.ID = primitive.NewObjectID()
	r.instances = append(r.instances, inst.Clone())
	return inst.ID, nil
}

func (r *fakeInstanceRepo) GetLatest(_ context.Context, sessionID primitive.ObjectID) (*domain.WorkoutInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *domain.WorkoutInstance
	for i := range r.instances {
		inst := r.instances[i]
		if inst.SessionID == sessionID && (best == nil || inst.Version > best.Version) {
			c := inst.Clone()
			best = &c
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return best, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]domain.TrainingSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[primitive.ObjectID]domain.TrainingSession{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *domain.TrainingSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	r.sessions[s.ID] = *s
	return s.ID, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *domain.TrainingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return repository.ErrNotFound
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) ListStartedInRange(_ context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.TrainingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TrainingSession
	for _, s := range r.sessions {
		if s.UserID != userID || s.StartedAt == nil {
			continue
		}
		if !s.StartedAt.Before(from) && !s.StartedAt.After(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(*out[j].StartedAt) })
	return out, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (r *fakeEventRepo) Append(_ context.Context, e *domain.SessionEvent) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = primitive.NewObjectID()
	r.events = append(r.events, *e)
	return e.ID, nil
}

func (r *fakeEventRepo) ListBySession(_ context.Context, sessionID primitive.ObjectID) ([]domain.SessionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SessionEvent
	for _, e := range r.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeReviewRunRepo struct {
	mu   sync.Mutex
	runs []domain.ReviewRun
}

func (r *fakeReviewRunRepo) Create(_ context.Context, run *domain.ReviewRun) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = primitive.NewObjectID()
	r.runs = append(r.runs, *run)
	return run.ID, nil
}

func (r *fakeReviewRunRepo) ListByUser(_ context.Context, userID primitive.ObjectID, limit int64) ([]domain.ReviewRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ReviewRun
	for _, run := range r.runs {
		if run.UserID == userID {
			out = append(out, run)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeLLM counts calls and answers through respond.
type fakeLLM struct {
	calls   atomic.Int32
	respond func(system, user string) (string, error)
}

func (f *fakeLLM) GenerateText(_ context.Context, system, user string) (string, error) {
	f.calls.Add(1)
	return f.respond(system, user)
}

func staticLLM(out string) *fakeLLM {
	return &fakeLLM{respond: func(string, string) (string, error) { return out, nil }}
}

type fakeArchive struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (a *fakeArchive) PutObject(_ context.Context, key, _ string, _ []byte) error {
	if a.err != nil {
		return a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	return nil
}

func (a *fakeArchive) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return "https://archive.test/" + strings.TrimPrefix(key, "/"), nil
}

var _ storage.ArchiveStorage = (*fakeArchive)(nil)

// Wednesday 2026-10-14 09:30 UTC.
var testNow = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

const threeDayProgram = `# Strength Block

Train **3** days per week.

## Training Sessions

### Day 1: Upper Body
Duration: 50 min
Intensity: high

### Day 2: Lower Body
Duration: 45 min
Intensity: moderate

### Day 3: Conditioning
Duration: 30 min
Intensity: low
`

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func strp(v string) *string     { return &v }
