// Package jobs contains the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edupulse/student-risk-hub/internal/application/command"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECALCULATE RISKS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RecalculateRisksJob reassesses the whole roster on a schedule so risk
// data stays fresh even for students whose metrics haven't been touched
// through the API.
type RecalculateRisksJob struct {
	handler     *command.RecalculateAllRisksHandler
	concurrency int
	logger      *slog.Logger
}

// NewRecalculateRisksJob creates a new RecalculateRisksJob. concurrency
// zero means the command's default.
func NewRecalculateRisksJob(handler *command.RecalculateAllRisksHandler, concurrency int, logger *slog.Logger) *RecalculateRisksJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecalculateRisksJob{
		handler:     handler,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Name implements scheduler.Job.
func (j *RecalculateRisksJob) Name() string {
	return "recalculate_risks"
}

// Description implements scheduler.Job.
func (j *RecalculateRisksJob) Description() string {
	return "Reassesses dropout risk for every student on the roster"
}

// Run implements scheduler.Job.
func (j *RecalculateRisksJob) Run(ctx context.Context) error {
	result, err := j.handler.Handle(ctx, command.RecalculateAllRisksCommand{
		Concurrency: j.concurrency,
		Reason:      "scheduled",
	})
	if err != nil {
		return fmt.Errorf("recalculate risks: %w", err)
	}

	j.logger.Info("roster reassessed",
		"total", result.TotalStudents,
		"assessed", result.Assessed,
		"failed", result.Failed,
		"high_risk", result.HighRiskCount,
		"duration", result.Duration.String(),
	)

	if result.Failed > 0 {
		return fmt.Errorf("recalculate risks: %d of %d assessments failed", result.Failed, result.TotalStudents)
	}
	return nil
}
