package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// PhaseOutcome describes what one seeding phase did.
type PhaseOutcome struct {
	Phase    string
	Created  int
	Existing int
	Err      error
	Duration time.Duration
}

// OK reports whether the phase completed without error.
func (o PhaseOutcome) OK() bool {
	return o.Err == nil
}

func (o PhaseOutcome) String() string {
	status := "ok"
	if o.Err != nil {
		status = "failed: " + o.Err.Error()
	}
	return fmt.Sprintf("%-18s created=%d existing=%d %s", o.Phase, o.Created, o.Existing, status)
}

// Report aggregates the outcome of every phase of a run.
type Report struct {
	Phases []PhaseOutcome
}

// Err joins the errors of every failed phase, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, p := range r.Phases {
		if p.Err != nil {
			errs = append(errs, fmt.Errorf("seed %s: %w", p.Phase, p.Err))
		}
	}
	return errors.Join(errs...)
}

// Failed lists the names of phases that did not complete.
func (r Report) Failed() []string {
	var names []string
	for _, p := range r.Phases {
		if p.Err != nil {
			names = append(names, p.Phase)
		}
	}
	return names
}

// Created totals the rows inserted across phases.
func (r Report) Created() int {
	total := 0
	for _, p := range r.Phases {
		total += p.Created
	}
	return total
}

func (r Report) String() string {
	var b strings.Builder
	for _, p := range r.Phases {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Log writes one line per phase.
func (r Report) Log(logger *slog.Logger) {
	if logger == nil {
		return
	}
	for _, p := range r.Phases {
		attrs := []any{
			slog.String("phase", p.Phase),
			slog.Int("created", p.Created),
			slog.Int("existing", p.Existing),
			slog.Duration("duration", p.Duration),
		}
		if p.Err != nil {
			logger.Error("seed phase failed", append(attrs, slog.Any("error", p.Err))...)
			continue
		}
		logger.Info("seed phase", attrs...)
	}
}
