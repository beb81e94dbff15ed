// Package main is the administration CLI for Student Risk Hub.
//
// It covers the operations that should not go through the HTTP API:
// schema migrations, roster seeding from a YAML file, and bootstrapping
// the first admin account (account registration over HTTP requires an
// existing admin).
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/edupulse/student-risk-hub/config"
	"github.com/edupulse/student-risk-hub/internal/application/query"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/auth"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/persistence/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "riskhub-admin",
		Short:         "Administration tool for Student Risk Hub",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newRollbackCmd(),
		newMigrateStatusCmd(),
		newSeedCmd(),
		newCreateAccountCmd(),
		newStatsCmd(),
		newClearCmd(),
	)

	return root
}

// connect loads configuration and opens the database pool.
func connect(ctx context.Context) (*postgres.Connection, *config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	var conn *postgres.Connection
	if cfg.Database.URL != "" {
		conn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	} else {
		pgCfg := postgres.DefaultConfig()
		pgCfg.Host = cfg.Database.Host
		pgCfg.Port = cfg.Database.Port
		pgCfg.Database = cfg.Database.Name
		pgCfg.User = cfg.Database.User
		pgCfg.Password = cfg.Database.Password
		pgCfg.SSLMode = cfg.Database.SSLMode
		conn, err = postgres.NewConnection(ctx, pgCfg)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	return conn, cfg, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, _, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			migrator := postgres.NewMigrator(conn)
			if err := migrator.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			fmt.Println("migrations applied")
			return nil
		},
	}
}

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, _, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			migrator := postgres.NewMigrator(conn)
			if err := migrator.Rollback(ctx); err != nil {
				return fmt.Errorf("rollback: %w", err)
			}

			fmt.Println("last migration rolled back")
			return nil
		},
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-status",
		Short: "Show which migrations have been applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, _, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			migrator := postgres.NewMigrator(conn)
			status, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
			for _, m := range status {
				applied := "no"
				if m.IsApplied {
					applied = m.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", m.Version, m.Name, applied)
			}
			return w.Flush()
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT BOOTSTRAP
// ══════════════════════════════════════════════════════════════════════════════

func newCreateAccountCmd() *cobra.Command {
	var (
		email     string
		fullName  string
		password  string
		role      string
		teacherID string
	)

	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create a login account directly in the database",
		Long: "Creates an account without going through the API. Use this to\n" +
			"bootstrap the first admin; further accounts can be registered\n" +
			"over HTTP by any admin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, cfg, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			accountRepo := postgres.NewAccountRepository(conn)

			// Session store is not needed for registration.
			svc := auth.NewService(accountRepo, nil, auth.Config{
				BcryptCost: cfg.Auth.BcryptCost,
			}, uuid.NewString)

			account, err := svc.Register(ctx, email, fullName, password, auth.Role(role), teacherID)
			if err != nil {
				return fmt.Errorf("create account: %w", err)
			}

			fmt.Printf("account created: %s (%s, %s)\n", account.Email, account.ID, account.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&fullName, "name", "", "display name (required)")
	cmd.Flags().StringVar(&password, "password", "", "password, min 8 characters (required)")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleTeacher), "account role: teacher or admin")
	cmd.Flags().StringVar(&teacherID, "teacher-id", "", "teacher record to link (optional)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// ══════════════════════════════════════════════════════════════════════════════
// CLEAR
// ══════════════════════════════════════════════════════════════════════════════

func newClearCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all assessment history (students are kept)",
		Long: "Wipes the append-only assessment log for every student. The\n" +
			"roster, interventions and accounts are untouched; the next\n" +
			"assessment run rebuilds the history from scratch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to wipe assessment history without --yes")
			}

			ctx := cmd.Context()
			conn, _, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			studentRepo := postgres.NewStudentRepository(conn)
			assessmentRepo := postgres.NewAssessmentRepository(conn)

			ids, err := studentRepo.ListIDs(ctx)
			if err != nil {
				return fmt.Errorf("list students: %w", err)
			}

			deleted := 0
			for _, id := range ids {
				n, err := assessmentRepo.DeleteAllForStudent(ctx, id)
				if err != nil {
					return fmt.Errorf("clear assessments for %s: %w", id, err)
				}
				deleted += n
			}

			fmt.Printf("deleted %d assessments across %d students\n", deleted, len(ids))
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the wipe")

	return cmd
}

// ══════════════════════════════════════════════════════════════════════════════
// STATS
// ══════════════════════════════════════════════════════════════════════════════

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cohort risk statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, _, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			handler := query.NewGetStatisticsHandler(
				postgres.NewStudentRepository(conn),
				postgres.NewAssessmentRepository(conn),
				postgres.NewInterventionRepository(conn),
			)

			stats, err := handler.Handle(ctx)
			if err != nil {
				return fmt.Errorf("statistics: %w", err)
			}

			fmt.Printf("total students:     %d\n", stats.TotalStudents)
			fmt.Printf("at risk:            %d (%.1f%%)\n", stats.AtRiskCount, stats.AtRiskPercent)
			for _, level := range []string{"low", "moderate", "high"} {
				fmt.Printf("  %-17s %d\n", level+":", stats.ByLevel[level])
			}
			fmt.Printf("avg. intervention effectiveness: %.2f\n", stats.AverageEffectiveness)
			return nil
		},
	}
}
