package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECALCULATE ALL RISKS COMMAND
// Bulk reassessment of the whole roster. Work fans out over a bounded
// worker pool; one failing student never aborts the run.
// ══════════════════════════════════════════════════════════════════════════════

// defaultRecalcConcurrency bounds parallel assessments during bulk runs.
const defaultRecalcConcurrency = 5

// RecalculateAllRisksCommand triggers reassessment of every student.
type RecalculateAllRisksCommand struct {
	// Concurrency controls how many students to assess in parallel.
	// Zero means the default.
	Concurrency int

	// Reason records what triggered the run ("scheduled", "manual").
	Reason string
}

// RecalculateAllRisksResult contains the outcome of a bulk run.
type RecalculateAllRisksResult struct {
	// TotalStudents is the roster size at run start.
	TotalStudents int

	// Assessed is how many students were successfully reassessed.
	Assessed int

	// Failed is how many assessments errored.
	Failed int

	// Errors maps student ID to the failure, for failed students only.
	Errors map[string]error

	// HighRiskCount is how many of the fresh assessments classified
	// at-risk (moderate or high).
	HighRiskCount int

	Duration    time.Duration
	StartedAt   time.Time
	CompletedAt time.Time
}

// RecalculateAllRisksHandler handles bulk reassessment.
type RecalculateAllRisksHandler struct {
	studentRepo    student.Repository
	assessHandler  *AssessStudentHandler
	eventPublisher shared.EventPublisher
}

// NewRecalculateAllRisksHandler creates a new RecalculateAllRisksHandler.
func NewRecalculateAllRisksHandler(
	studentRepo student.Repository,
	assessHandler *AssessStudentHandler,
	eventPublisher shared.EventPublisher,
) *RecalculateAllRisksHandler {
	return &RecalculateAllRisksHandler{
		studentRepo:    studentRepo,
		assessHandler:  assessHandler,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the bulk recalculation command.
func (h *RecalculateAllRisksHandler) Handle(ctx context.Context, cmd RecalculateAllRisksCommand) (*RecalculateAllRisksResult, error) {
	startedAt := time.Now().UTC()
	result := &RecalculateAllRisksResult{
		Errors:    make(map[string]error),
		StartedAt: startedAt,
	}

	ids, err := h.studentRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("recalculate_all: list students: %w", err)
	}
	result.TotalStudents = len(ids)

	concurrency := cmd.Concurrency
	if concurrency <= 0 {
		concurrency = defaultRecalcConcurrency
	}

	type item struct {
		studentID string
		atRisk    bool
		err       error
	}

	sem := make(chan struct{}, concurrency)
	results := make(chan item, len(ids))
	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}

		go func(studentID string) {
			defer wg.Done()
			defer func() { <-sem }()

			res, assessErr := h.assessHandler.Handle(ctx, AssessStudentCommand{
				StudentID: studentID,
				Reason:    cmd.Reason,
			})
			if assessErr != nil {
				results <- item{studentID: studentID, err: assessErr}
				return
			}
			results <- item{studentID: studentID, atRisk: res.Assessment.RiskLevel.AtRisk()}
		}(id)
	}

	wg.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			result.Failed++
			result.Errors[r.studentID] = r.err
			continue
		}
		result.Assessed++
		if r.atRisk {
			result.HighRiskCount++
		}
	}

	result.CompletedAt = time.Now().UTC()
	result.Duration = result.CompletedAt.Sub(startedAt)

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(shared.NewBulkRecalculationDoneEvent(result.Assessed, result.Failed))
	}

	return result, nil
}
