package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// Schema for the roster, assessment history, interventions and alerts.
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_teachers", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_students", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_risk_assessments", UpSQL: migration003Up, DownSQL: migration003Down},
		{Version: 4, Name: "create_interventions", UpSQL: migration004Up, DownSQL: migration004Down},
		{Version: 5, Name: "create_notifications", UpSQL: migration005Up, DownSQL: migration005Down},
		{Version: 6, Name: "create_accounts", UpSQL: migration006Up, DownSQL: migration006Down},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS teachers (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	department TEXT NOT NULL DEFAULT '',
	subjects JSONB NOT NULL DEFAULT '[]',
	xp INTEGER NOT NULL DEFAULT 0,
	interventions_completed INTEGER NOT NULL DEFAULT 0,
	successful_interventions INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const migration001Down = `DROP TABLE IF EXISTS teachers;`

const migration002Up = `
CREATE TABLE IF NOT EXISTS students (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	grade TEXT NOT NULL DEFAULT '',
	section TEXT NOT NULL DEFAULT '',
	teacher_id UUID REFERENCES teachers(id) ON DELETE SET NULL,

	cgpa DOUBLE PRECISION NOT NULL DEFAULT 0,
	assignment_completion_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	test_score_average DOUBLE PRECISION NOT NULL DEFAULT 0,
	attendance_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_absences INTEGER NOT NULL DEFAULT 0,
	tardiness_count INTEGER NOT NULL DEFAULT 0,
	login_frequency DOUBLE PRECISION NOT NULL DEFAULT 0,
	class_participation_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	challenge_completion_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	fee_payment_status TEXT NOT NULL DEFAULT 'current',
	has_scholarship BOOLEAN NOT NULL DEFAULT FALSE,
	current_streak INTEGER NOT NULL DEFAULT 0,
	longest_streak INTEGER NOT NULL DEFAULT 0,

	xp INTEGER NOT NULL DEFAULT 0,
	badges JSONB NOT NULL DEFAULT '[]',

	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_students_teacher ON students(teacher_id);
CREATE INDEX IF NOT EXISTS idx_students_grade ON students(grade);
`

const migration002Down = `DROP TABLE IF EXISTS students;`

const migration003Up = `
CREATE TABLE IF NOT EXISTS risk_assessments (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	risk_level TEXT NOT NULL,
	risk_score DOUBLE PRECISION NOT NULL,
	factors JSONB NOT NULL,
	recommendations JSONB NOT NULL DEFAULT '[]',
	predicted_dropout_probability DOUBLE PRECISION NOT NULL,
	trend_direction TEXT NOT NULL,
	previous_score DOUBLE PRECISION,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_assessments_student_time
	ON risk_assessments(student_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_assessments_level ON risk_assessments(risk_level);
`

const migration003Down = `DROP TABLE IF EXISTS risk_assessments;`

const migration004Up = `
CREATE TABLE IF NOT EXISTS interventions (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	teacher_id UUID REFERENCES teachers(id) ON DELETE SET NULL,
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	priority TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	initial_risk_score DOUBLE PRECISION NOT NULL,
	final_risk_score DOUBLE PRECISION,
	effectiveness DOUBLE PRECISION,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMP WITH TIME ZONE
);

CREATE INDEX IF NOT EXISTS idx_interventions_student ON interventions(student_id);
CREATE INDEX IF NOT EXISTS idx_interventions_teacher ON interventions(teacher_id);
CREATE INDEX IF NOT EXISTS idx_interventions_status ON interventions(status);
`

const migration004Down = `DROP TABLE IF EXISTS interventions;`

const migration005Up = `
CREATE TABLE IF NOT EXISTS notifications (
	id UUID PRIMARY KEY,
	recipient_id TEXT NOT NULL DEFAULT '',
	student_id TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient_unread
	ON notifications(recipient_id, read, created_at DESC);
`

const migration005Down = `DROP TABLE IF EXISTS notifications;`

const migration006Up = `
CREATE TABLE IF NOT EXISTS accounts (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL,
	teacher_id UUID REFERENCES teachers(id) ON DELETE SET NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const migration006Down = `DROP TABLE IF EXISTS accounts;`
