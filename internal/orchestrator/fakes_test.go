package orchestrator_test

import (
	"context"
	"sync"
	"time"

	"scribe/internal/domain"
	"scribe/internal/generation"
)

type memJobs struct {
	mu        sync.Mutex
	jobs      map[string]*domain.Job
	updates   []domain.JobUpdate
	getErr    error
	failOn    domain.JobStatus
	updateErr error
}

func newMemJobs(jobs ...domain.Job) *memJobs {
	m := &memJobs{jobs: make(map[string]*domain.Job)}
	for i := range jobs {
		j := jobs[i]
		m.jobs[j.ID] = &j
	}
	return m
}

func (m *memJobs) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	j, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobs) UpdateStatus(ctx context.Context, jobID string, update domain.JobUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, update)
	if m.failOn != "" && update.Status == m.failOn {
		return m.updateErr
	}
	j, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	j.Status = update.Status
	if len(update.Result) > 0 {
		j.Result = update.Result
	}
	switch {
	case update.Status == domain.JobStatusCompleted:
		j.ErrorMessage = ""
		now := time.Now()
		j.CompletedAt = &now
	case update.ErrorMessage != "":
		j.ErrorMessage = update.ErrorMessage
	}
	return nil
}

func (m *memJobs) statuses() []domain.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.JobStatus, 0, len(m.updates))
	for _, u := range m.updates {
		out = append(out, u.Status)
	}
	return out
}

// job returns a copy of the stored job.
func (m *memJobs) job(id string) *domain.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	j := *m.jobs[id]
	return &j
}

type fakeGenerator struct {
	out     string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, params generation.Params) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

type fakeSource struct {
	text string
	err  error
	keys []string
}

func (f *fakeSource) Load(ctx context.Context, key, fileExtension string) (string, error) {
	f.keys = append(f.keys, key)
	return f.text, f.err
}

type fakeSink struct {
	err       error
	artifacts []domain.Artifact
}

func (f *fakeSink) Persist(ctx context.Context, job *domain.Job, userID string, artifact domain.Artifact) (string, error) {
	f.artifacts = append(f.artifacts, artifact)
	if f.err != nil {
		return "", f.err
	}
	return userID + "/" + job.ID + "/result.json", nil
}

type fakeLocker struct {
	err      error
	released int
}

func (f *fakeLocker) Acquire(ctx context.Context, jobID string) (func(context.Context), error) {
	if f.err != nil {
		return nil, f.err
	}
	return func(context.Context) { f.released++ }, nil
}

type fakeDeadLetter struct {
	bodies  [][]byte
	reasons []string
}

func (f *fakeDeadLetter) PublishDeadLetter(ctx context.Context, body []byte, reason string) error {
	f.bodies = append(f.bodies, body)
	f.reasons = append(f.reasons, reason)
	return nil
}
