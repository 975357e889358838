package cron

import (
	"context"
	"fmt"
)

// Job is one unit of periodic work run by the scheduler.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds jobs by unique name, preserving registration order.
type Registry struct {
	order []string
	jobs  map[string]Job
}

// NewRegistry registers jobs in order. Nil jobs are ignored and a repeated
// name keeps the first job.
func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{jobs: make(map[string]Job, len(jobs))}
	for _, job := range jobs {
		_ = r.Register(job)
	}
	return r
}

func (r *Registry) Register(job Job) error {
	if job == nil {
		return fmt.Errorf("cron job required")
	}
	name := job.Name()
	if name == "" {
		return fmt.Errorf("cron job name required")
	}
	if _, exists := r.jobs[name]; exists {
		return fmt.Errorf("cron job %q already registered", name)
	}
	r.jobs[name] = job
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the job registered under name.
func (r *Registry) Lookup(name string) (Job, bool) {
	job, ok := r.jobs[name]
	return job, ok
}

// Jobs returns a fresh slice of jobs in registration order.
func (r *Registry) Jobs() []Job {
	out := make([]Job, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.jobs[name])
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}
