package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/edupulse/student-risk-hub/internal/application/command"
	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/shared"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/auth"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/persistence/postgres"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEED
// Loads teachers, accounts and students from a YAML file. Seeding is
// idempotent: records that already exist are skipped, so the command can
// be re-run after editing the file.
// ══════════════════════════════════════════════════════════════════════════════

// seedFile is the YAML shape the seed command consumes.
type seedFile struct {
	Teachers []seedTeacher `yaml:"teachers"`
	Accounts []seedAccount `yaml:"accounts"`
	Students []seedStudent `yaml:"students"`
}

type seedTeacher struct {
	Code       string   `yaml:"code"`
	FullName   string   `yaml:"full_name"`
	Department string   `yaml:"department"`
	Subjects   []string `yaml:"subjects"`
}

type seedAccount struct {
	Email       string `yaml:"email"`
	FullName    string `yaml:"full_name"`
	Password    string `yaml:"password"`
	Role        string `yaml:"role"`
	TeacherCode string `yaml:"teacher_code"`
}

type seedStudent struct {
	Code        string       `yaml:"code"`
	FullName    string       `yaml:"full_name"`
	Grade       string       `yaml:"grade"`
	Section     string       `yaml:"section"`
	TeacherCode string       `yaml:"teacher_code"`
	Metrics     *seedMetrics `yaml:"metrics"`
}

// seedMetrics mirrors the partial metrics update; absent fields keep the
// onboarding defaults.
type seedMetrics struct {
	CGPA                     *float64 `yaml:"cgpa"`
	AssignmentCompletionRate *float64 `yaml:"assignment_completion_rate"`
	TestScoreAverage         *float64 `yaml:"test_score_average"`
	AttendanceRate           *float64 `yaml:"attendance_rate"`
	TotalAbsences            *int     `yaml:"total_absences"`
	TardinessCount           *int     `yaml:"tardiness_count"`
	LoginFrequency           *float64 `yaml:"login_frequency"`
	ClassParticipationScore  *float64 `yaml:"class_participation_score"`
	ChallengeCompletionRate  *float64 `yaml:"challenge_completion_rate"`
	FeePaymentStatus         *string  `yaml:"fee_payment_status"`
	HasScholarship           *bool    `yaml:"has_scholarship"`
}

func (m *seedMetrics) toUpdate() (*student.MetricsUpdate, error) {
	if m == nil {
		return nil, nil
	}

	update := &student.MetricsUpdate{
		CGPA:                     m.CGPA,
		AssignmentCompletionRate: m.AssignmentCompletionRate,
		TestScoreAverage:         m.TestScoreAverage,
		AttendanceRate:           m.AttendanceRate,
		TotalAbsences:            m.TotalAbsences,
		TardinessCount:           m.TardinessCount,
		LoginFrequency:           m.LoginFrequency,
		ClassParticipationScore:  m.ClassParticipationScore,
		ChallengeCompletionRate:  m.ChallengeCompletionRate,
		HasScholarship:           m.HasScholarship,
	}

	if m.FeePaymentStatus != nil {
		status := risk.FeePaymentStatus(*m.FeePaymentStatus)
		if !status.IsValid() {
			return nil, fmt.Errorf("invalid fee_payment_status %q", *m.FeePaymentStatus)
		}
		update.FeePaymentStatus = &status
	}

	return update, nil
}

func newSeedCmd() *cobra.Command {
	var file string
	var skipAssessment bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load teachers, accounts and students from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}

			var seed seedFile
			if err := yaml.Unmarshal(data, &seed); err != nil {
				return fmt.Errorf("parse seed file: %w", err)
			}

			conn, cfg, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			studentRepo := postgres.NewStudentRepository(conn)
			teacherRepo := postgres.NewTeacherRepository(conn)
			assessmentRepo := postgres.NewAssessmentRepository(conn)
			notificationRepo := postgres.NewNotificationRepository(conn)
			accountRepo := postgres.NewAccountRepository(conn)

			// Registering through the command handler gives every seeded
			// student an initial assessment, same as the API would.
			var assessCmd *command.AssessStudentHandler
			if !skipAssessment {
				assessCmd = command.NewAssessStudentHandler(studentRepo, assessmentRepo, notificationRepo, nil, nil)
			}
			registerCmd := command.NewRegisterStudentHandler(studentRepo, teacherRepo, assessCmd, nil)

			authSvc := auth.NewService(accountRepo, nil, auth.Config{
				BcryptCost: cfg.Auth.BcryptCost,
			}, uuid.NewString)

			teacherIDs, err := seedTeachers(cmd, teacherRepo, seed.Teachers)
			if err != nil {
				return err
			}

			if err := seedAccounts(cmd, authSvc, seed.Accounts, teacherIDs); err != nil {
				return err
			}

			return seedStudents(cmd, studentRepo, registerCmd, seed.Students, teacherIDs)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "path to the seed file")
	cmd.Flags().BoolVar(&skipAssessment, "skip-assessment", false, "register students without running an initial assessment")

	return cmd
}

// seedTeachers creates missing teachers and returns a code -> ID map
// covering both existing and newly created records.
func seedTeachers(cmd *cobra.Command, repo *postgres.TeacherRepository, teachers []seedTeacher) (map[string]string, error) {
	ctx := cmd.Context()

	existing, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}

	ids := make(map[string]string, len(existing))
	for _, t := range existing {
		ids[t.Code.String()] = t.ID
	}

	for _, t := range teachers {
		if t.Code == "" || t.FullName == "" {
			return nil, fmt.Errorf("teacher entry needs code and full_name (got code=%q)", t.Code)
		}
		if _, ok := ids[t.Code]; ok {
			cmd.Printf("teacher %s already exists, skipping\n", t.Code)
			continue
		}

		now := time.Now().UTC()
		teacher := &student.Teacher{
			ID:         uuid.NewString(),
			Code:       student.Code(t.Code),
			FullName:   t.FullName,
			Department: t.Department,
			Subjects:   t.Subjects,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repo.Create(ctx, teacher); err != nil {
			return nil, fmt.Errorf("create teacher %s: %w", t.Code, err)
		}

		ids[t.Code] = teacher.ID
		cmd.Printf("teacher %s created\n", t.Code)
	}

	return ids, nil
}

func seedAccounts(cmd *cobra.Command, svc *auth.Service, accounts []seedAccount, teacherIDs map[string]string) error {
	ctx := cmd.Context()

	for _, a := range accounts {
		teacherID := ""
		if a.TeacherCode != "" {
			id, ok := teacherIDs[a.TeacherCode]
			if !ok {
				return fmt.Errorf("account %s references unknown teacher %q", a.Email, a.TeacherCode)
			}
			teacherID = id
		}

		_, err := svc.Register(ctx, a.Email, a.FullName, a.Password, auth.Role(a.Role), teacherID)
		switch {
		case errors.Is(err, shared.ErrAlreadyExists):
			cmd.Printf("account %s already exists, skipping\n", a.Email)
		case err != nil:
			return fmt.Errorf("create account %s: %w", a.Email, err)
		default:
			cmd.Printf("account %s created (%s)\n", a.Email, a.Role)
		}
	}

	return nil
}

func seedStudents(cmd *cobra.Command, repo *postgres.StudentRepository, register *command.RegisterStudentHandler, students []seedStudent, teacherIDs map[string]string) error {
	ctx := cmd.Context()

	for _, s := range students {
		_, err := repo.GetByCode(ctx, student.Code(s.Code))
		if err == nil {
			cmd.Printf("student %s already exists, skipping\n", s.Code)
			continue
		}
		if !shared.IsNotFound(err) {
			return fmt.Errorf("look up student %s: %w", s.Code, err)
		}

		teacherID := ""
		if s.TeacherCode != "" {
			id, ok := teacherIDs[s.TeacherCode]
			if !ok {
				return fmt.Errorf("student %s references unknown teacher %q", s.Code, s.TeacherCode)
			}
			teacherID = id
		}

		metrics, err := s.Metrics.toUpdate()
		if err != nil {
			return fmt.Errorf("student %s: %w", s.Code, err)
		}

		result, err := register.Handle(ctx, command.RegisterStudentCommand{
			Code:      s.Code,
			FullName:  s.FullName,
			Grade:     s.Grade,
			Section:   s.Section,
			TeacherID: teacherID,
			Metrics:   metrics,
		})
		if err != nil {
			return fmt.Errorf("register student %s: %w", s.Code, err)
		}

		if result.InitialAssessment != nil {
			a := result.InitialAssessment.Assessment
			cmd.Printf("student %s created (risk: %s, score %.1f)\n", s.Code, a.RiskLevel, a.RiskScore)
		} else {
			cmd.Printf("student %s created\n", s.Code)
		}
	}

	return nil
}
