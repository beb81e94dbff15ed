package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edupulse/student-risk-hub/internal/domain/notification"
	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY DIGEST JOB
// ══════════════════════════════════════════════════════════════════════════════

// digestTopStudents caps how many names a digest message lists.
const digestTopStudents = 5

// DailyDigestJob sends each teacher a morning summary of their at-risk
// students, so nobody has to poll the dashboard to know where to spend
// the day.
type DailyDigestJob struct {
	teacherRepo      student.TeacherRepository
	studentRepo      student.Repository
	assessmentRepo   risk.AssessmentRepository
	notificationRepo notification.Repository
	logger           *slog.Logger
}

// NewDailyDigestJob creates a new DailyDigestJob.
func NewDailyDigestJob(
	teacherRepo student.TeacherRepository,
	studentRepo student.Repository,
	assessmentRepo risk.AssessmentRepository,
	notificationRepo notification.Repository,
	logger *slog.Logger,
) *DailyDigestJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyDigestJob{
		teacherRepo:      teacherRepo,
		studentRepo:      studentRepo,
		assessmentRepo:   assessmentRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Name implements scheduler.Job.
func (j *DailyDigestJob) Name() string {
	return "daily_digest"
}

// Description implements scheduler.Job.
func (j *DailyDigestJob) Description() string {
	return "Sends each teacher a digest of their at-risk students"
}

// Run implements scheduler.Job.
func (j *DailyDigestJob) Run(ctx context.Context) error {
	atRisk, err := j.latestAtRisk(ctx)
	if err != nil {
		return fmt.Errorf("daily digest: %w", err)
	}

	teachers, err := j.teacherRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("daily digest: list teachers: %w", err)
	}

	sent := 0
	for _, t := range teachers {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ok, err := j.digestForTeacher(ctx, t.ID, atRisk)
		if err != nil {
			j.logger.Error("digest failed", "teacher_id", t.ID, "error", err)
			continue
		}
		if ok {
			sent++
		}
	}

	j.logger.Info("daily digests sent", "teachers", len(teachers), "digests", sent)
	return nil
}

// latestAtRisk maps student ID to their current assessment for every
// student whose latest classification is at-risk.
func (j *DailyDigestJob) latestAtRisk(ctx context.Context) (map[string]*risk.Assessment, error) {
	out := make(map[string]*risk.Assessment)
	for _, level := range []risk.RiskLevel{risk.LevelHigh, risk.LevelModerate} {
		assessments, err := j.assessmentRepo.ByRiskLevel(ctx, level)
		if err != nil {
			return nil, fmt.Errorf("load %s level: %w", level, err)
		}
		for _, a := range assessments {
			out[a.StudentID] = a
		}
	}
	return out, nil
}

// digestForTeacher builds and stores one teacher's digest. Returns false
// when the teacher has no at-risk students and no digest is warranted.
func (j *DailyDigestJob) digestForTeacher(ctx context.Context, teacherID string, atRisk map[string]*risk.Assessment) (bool, error) {
	roster, err := j.studentRepo.List(ctx, student.ListOptions{TeacherID: teacherID})
	if err != nil {
		return false, fmt.Errorf("list students: %w", err)
	}

	type flagged struct {
		name  string
		score float64
		level risk.RiskLevel
	}

	var worst []flagged
	highCount := 0
	for _, s := range roster {
		a, ok := atRisk[s.ID]
		if !ok {
			continue
		}
		if a.RiskLevel == risk.LevelHigh {
			highCount++
		}
		worst = append(worst, flagged{name: s.FullName, score: a.RiskScore, level: a.RiskLevel})
	}

	if len(worst) == 0 {
		return false, nil
	}

	// Worst first; roster order breaks ties.
	for i := 0; i < len(worst); i++ {
		for k := i + 1; k < len(worst); k++ {
			if worst[k].score > worst[i].score {
				worst[i], worst[k] = worst[k], worst[i]
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d of your students are currently at risk (%d high).", len(worst), highCount)
	top := worst
	if len(top) > digestTopStudents {
		top = top[:digestTopStudents]
	}
	for _, f := range top {
		fmt.Fprintf(&b, "\n- %s: %.1f (%s)", f.name, f.score, f.level)
	}

	n := &notification.Notification{
		ID:          uuid.NewString(),
		RecipientID: teacherID,
		Type:        notification.TypeDailyDigest,
		Title:       "Daily at-risk digest",
		Message:     b.String(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := j.notificationRepo.Create(ctx, n); err != nil {
		return false, fmt.Errorf("store digest: %w", err)
	}
	return true, nil
}
