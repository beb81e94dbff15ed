// Package http implements the REST API for the student risk hub.
package http

import (
	"net/http"
	"time"

	"github.com/edupulse/student-risk-hub/internal/application/command"
	"github.com/edupulse/student-risk-hub/internal/application/query"
	"github.com/edupulse/student-risk-hub/internal/domain/intervention"
	"github.com/edupulse/student-risk-hub/internal/domain/risk"
	"github.com/edupulse/student-risk-hub/internal/domain/student"
	"github.com/edupulse/student-risk-hub/internal/infrastructure/auth"
	"github.com/edupulse/student-risk-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Student Risk Hub API",
		"version":     "v1",
		"description": "REST API for early dropout-risk detection and intervention tracking",
		"endpoints": map[string]string{
			"health":     "/health",
			"students":   "/api/v1/students",
			"at_risk":    "/api/v1/students/at-risk",
			"statistics": "/api/v1/statistics",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	Role      string    `json:"role"`
	TeacherID string    `json:"teacher_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
}

// handleLogin handles POST /api/v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.AuthService == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Authentication not configured")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	token, session, err := s.deps.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		AccountID: session.AccountID,
		Role:      string(session.Role),
		TeacherID: session.TeacherID,
		IssuedAt:  session.CreatedAt,
	})
}

// handleLogout handles POST /api/v1/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.deps.AuthService == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if err := s.deps.AuthService.Logout(r.Context(), bearerToken(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

type registerAccountRequest struct {
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	TeacherID string `json:"teacher_id,omitempty"`
}

// handleRegisterAccount handles POST /api/v1/auth/register (admin only).
func (s *Server) handleRegisterAccount(w http.ResponseWriter, r *http.Request) {
	if s.deps.AuthService == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Authentication not configured")
		return
	}

	var req registerAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	account, err := s.deps.AuthService.Register(r.Context(), req.Email, req.FullName, req.Password, auth.Role(req.Role), req.TeacherID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"account_id": account.ID,
		"email":      account.Email,
		"role":       string(account.Role),
		"teacher_id": account.TeacherID,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// studentSummaryDTO is the roster listing row.
type studentSummaryDTO struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	FullName  string    `json:"full_name"`
	Grade     string    `json:"grade,omitempty"`
	Section   string    `json:"section,omitempty"`
	TeacherID string    `json:"teacher_id,omitempty"`
	XP        int       `json:"xp"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}

func toStudentSummary(st *student.Student) studentSummaryDTO {
	return studentSummaryDTO{
		ID:        st.ID,
		Code:      st.Code.String(),
		FullName:  st.FullName,
		Grade:     st.Grade,
		Section:   st.Section,
		TeacherID: st.AssignedTeacherID,
		XP:        int(st.XP),
		Level:     st.Level(),
		CreatedAt: st.CreatedAt,
	}
}

// handleListStudents handles GET /api/v1/students
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	if s.deps.StudentRepo == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Roster not configured")
		return
	}

	opts := student.ListOptions{
		Limit:     getQueryParamInt(r, "limit", 50),
		Offset:    getQueryParamInt(r, "offset", 0),
		Grade:     getQueryParam(r, "grade", ""),
		TeacherID: getQueryParam(r, "teacher_id", ""),
	}

	students, err := s.deps.StudentRepo.List(r.Context(), opts)
	if err != nil {
		s.logger.Error("failed to list students", logger.Err(err))
		writeDomainError(w, err)
		return
	}

	total, err := s.deps.StudentRepo.Count(r.Context())
	if err != nil {
		total = len(students)
	}

	rows := make([]studentSummaryDTO, 0, len(students))
	for _, st := range students {
		rows = append(rows, toStudentSummary(st))
	}

	meta := &ResponseMeta{
		TotalCount: total,
		PageSize:   opts.Limit,
		HasMore:    opts.Offset+len(rows) < total,
	}

	writeJSONWithMeta(w, r, http.StatusOK, rows, meta)
}

type metricsPayload struct {
	CGPA                     *float64 `json:"cgpa,omitempty"`
	AssignmentCompletionRate *float64 `json:"assignment_completion_rate,omitempty"`
	TestScoreAverage         *float64 `json:"test_score_average,omitempty"`
	AttendanceRate           *float64 `json:"attendance_rate,omitempty"`
	TotalAbsences            *int     `json:"total_absences,omitempty"`
	TardinessCount           *int     `json:"tardiness_count,omitempty"`
	LoginFrequency           *float64 `json:"login_frequency,omitempty"`
	ClassParticipationScore  *float64 `json:"class_participation_score,omitempty"`
	ChallengeCompletionRate  *float64 `json:"challenge_completion_rate,omitempty"`
	FeePaymentStatus         *string  `json:"fee_payment_status,omitempty"`
	HasScholarship           *bool    `json:"has_scholarship,omitempty"`
}

func (p metricsPayload) toUpdate() student.MetricsUpdate {
	u := student.MetricsUpdate{
		CGPA:                     p.CGPA,
		AssignmentCompletionRate: p.AssignmentCompletionRate,
		TestScoreAverage:         p.TestScoreAverage,
		AttendanceRate:           p.AttendanceRate,
		TotalAbsences:            p.TotalAbsences,
		TardinessCount:           p.TardinessCount,
		LoginFrequency:           p.LoginFrequency,
		ClassParticipationScore:  p.ClassParticipationScore,
		ChallengeCompletionRate:  p.ChallengeCompletionRate,
		HasScholarship:           p.HasScholarship,
	}
	if p.FeePaymentStatus != nil {
		status := risk.FeePaymentStatus(*p.FeePaymentStatus)
		u.FeePaymentStatus = &status
	}
	return u
}

type registerStudentRequest struct {
	Code      string          `json:"code"`
	FullName  string          `json:"full_name"`
	Grade     string          `json:"grade,omitempty"`
	Section   string          `json:"section,omitempty"`
	TeacherID string          `json:"teacher_id,omitempty"`
	Metrics   *metricsPayload `json:"metrics,omitempty"`
}

// handleRegisterStudent handles POST /api/v1/students
func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterStudentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registration handler not configured")
		return
	}

	var req registerStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	cmd := command.RegisterStudentCommand{
		Code:      req.Code,
		FullName:  req.FullName,
		Grade:     req.Grade,
		Section:   req.Section,
		TeacherID: req.TeacherID,
	}
	if req.Metrics != nil {
		update := req.Metrics.toUpdate()
		cmd.Metrics = &update
	}

	result, err := s.deps.RegisterStudentHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to register student", logger.Err(err))
		writeDomainError(w, err)
		return
	}

	response := map[string]interface{}{
		"student": toStudentSummary(result.Student),
	}
	if result.InitialAssessment != nil {
		a := result.InitialAssessment.Assessment
		response["initial_assessment"] = map[string]interface{}{
			"risk_score": a.RiskScore,
			"risk_level": string(a.RiskLevel),
			"trend":      string(a.TrendDirection),
		}
	}

	writeJSON(w, http.StatusCreated, response)
}

// handleDeleteStudent handles DELETE /api/v1/students/{id} (admin only).
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if s.deps.StudentRepo == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Roster not configured")
		return
	}

	if err := s.deps.StudentRepo.Delete(r.Context(), studentID); err != nil {
		s.logger.Error("failed to delete student", logger.Err(err), logger.StudentID(studentID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "student_id": studentID})
}

// ══════════════════════════════════════════════════════════════════════════════
// RISK HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetRiskOverview handles GET /api/v1/students/{id}
func (s *Server) handleGetRiskOverview(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if s.deps.GetRiskOverviewHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Overview handler not configured")
		return
	}

	q := query.GetRiskOverviewQuery{
		StudentID:    studentID,
		HistoryLimit: getQueryParamInt(r, "history", 0),
	}

	result, err := s.deps.GetRiskOverviewHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get risk overview", logger.Err(err), logger.StudentID(studentID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCompareAlgorithms handles GET /api/v1/students/{id}/comparison
func (s *Server) handleCompareAlgorithms(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if s.deps.CompareAlgorithmsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Comparison handler not configured")
		return
	}

	q := query.CompareAlgorithmsQuery{
		StudentID:       studentID,
		IncludeCombined: !getQueryParamBool(r, "exclude_combined"),
	}

	result, err := s.deps.CompareAlgorithmsHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to compare algorithms", logger.Err(err), logger.StudentID(studentID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetAtRisk handles GET /api/v1/students/at-risk
func (s *Server) handleGetAtRisk(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetHighRiskStudentsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "At-risk handler not configured")
		return
	}

	q := query.GetHighRiskStudentsQuery{
		Limit: getQueryParamInt(r, "limit", 0),
		// The dashboard wants the full at-risk picture unless told
		// otherwise.
		IncludeModerate: !getQueryParamBool(r, "high_only"),
	}

	result, err := s.deps.GetHighRiskStudentsHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get at-risk students", logger.Err(err))
		writeDomainError(w, err)
		return
	}

	meta := &ResponseMeta{TotalCount: result.TotalAtRisk}
	writeJSONWithMeta(w, r, http.StatusOK, result, meta)
}

// handleGetStatistics handles GET /api/v1/statistics
func (s *Server) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStatisticsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Statistics handler not configured")
		return
	}

	result, err := s.deps.GetStatisticsHandler.Handle(r.Context())
	if err != nil {
		s.logger.Error("failed to get statistics", logger.Err(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type updateMetricsRequest struct {
	Metrics           metricsPayload `json:"metrics"`
	TriggerAssessment bool           `json:"trigger_assessment"`
}

// handleUpdateMetrics handles PUT /api/v1/students/{id}/metrics
func (s *Server) handleUpdateMetrics(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if s.deps.UpdateMetricsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Metrics handler not configured")
		return
	}

	var req updateMetricsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	cmd := command.UpdateMetricsCommand{
		StudentID:         studentID,
		Update:            req.Metrics.toUpdate(),
		TriggerAssessment: req.TriggerAssessment,
	}

	result, err := s.deps.UpdateMetricsHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to update metrics", logger.Err(err), logger.StudentID(studentID))
		writeDomainError(w, err)
		return
	}

	response := map[string]interface{}{
		"changed_fields": result.ChangedFields,
	}
	if result.Assessment != nil {
		a := result.Assessment.Assessment
		response["assessment"] = map[string]interface{}{
			"risk_score":    a.RiskScore,
			"risk_level":    string(a.RiskLevel),
			"trend":         string(a.TrendDirection),
			"level_changed": result.Assessment.LevelChanged,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// handleAssessStudent handles POST /api/v1/students/{id}/assess
func (s *Server) handleAssessStudent(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if s.deps.AssessStudentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Assessment handler not configured")
		return
	}

	cmd := command.AssessStudentCommand{
		StudentID: studentID,
		Reason:    "manual",
	}

	result, err := s.deps.AssessStudentHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to assess student", logger.Err(err), logger.StudentID(studentID))
		writeDomainError(w, err)
		return
	}

	a := result.Assessment
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assessment_id":       a.ID,
		"risk_score":          a.RiskScore,
		"risk_level":          string(a.RiskLevel),
		"trend":               string(a.TrendDirection),
		"dropout_probability": a.PredictedDropoutProbability,
		"recommendations":     a.Recommendations,
		"level_changed":       result.LevelChanged,
		"previous_level":      string(result.PreviousLevel),
		"notifications_sent":  result.NotificationsSent,
	})
}

type recordProgressRequest struct {
	XPDelta     int  `json:"xp_delta"`
	ActiveToday bool `json:"active_today"`
}

// handleRecordProgress handles POST /api/v1/students/{id}/progress
func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if s.deps.RecordProgressHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Progress handler not configured")
		return
	}

	var req recordProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	cmd := command.RecordProgressCommand{
		StudentID:   studentID,
		XPDelta:     req.XPDelta,
		ActiveToday: req.ActiveToday,
	}

	result, err := s.deps.RecordProgressHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to record progress", logger.Err(err), logger.StudentID(studentID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"xp":             result.NewXP,
		"level":          result.NewLevel,
		"leveled_up":     result.LeveledUp,
		"current_streak": result.CurrentStreak,
		"streak_broken":  result.StreakBroken,
		"badges_awarded": result.BadgesAwarded,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERVENTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type createInterventionRequest struct {
	StudentID   string `json:"student_id"`
	TeacherID   string `json:"teacher_id,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// handleCreateIntervention handles POST /api/v1/interventions
func (s *Server) handleCreateIntervention(w http.ResponseWriter, r *http.Request) {
	if s.deps.CreateInterventionHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Intervention handler not configured")
		return
	}

	var req createInterventionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	// Default the teacher to the authenticated session.
	teacherID := req.TeacherID
	if teacherID == "" {
		if session := getSession(r.Context()); session != nil {
			teacherID = session.TeacherID
		}
	}

	cmd := command.CreateInterventionCommand{
		StudentID:   req.StudentID,
		TeacherID:   teacherID,
		Type:        intervention.Type(req.Type),
		Description: req.Description,
		Priority:    intervention.Priority(req.Priority),
	}

	created, err := s.deps.CreateInterventionHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to create intervention", logger.Err(err), logger.StudentID(req.StudentID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"intervention_id":    created.ID,
		"student_id":         created.StudentID,
		"teacher_id":         created.TeacherID,
		"type":               string(created.Type),
		"status":             string(created.Status),
		"priority":           string(created.Priority),
		"initial_risk_score": created.InitialRiskScore,
	})
}

// handleCompleteIntervention handles POST /api/v1/interventions/{id}/complete
func (s *Server) handleCompleteIntervention(w http.ResponseWriter, r *http.Request) {
	interventionID := r.PathValue("id")
	if s.deps.CompleteInterventionHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Intervention handler not configured")
		return
	}

	cmd := command.CompleteInterventionCommand{
		InterventionID: interventionID,
	}

	result, err := s.deps.CompleteInterventionHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to complete intervention", logger.Err(err),
			logger.String("intervention_id", interventionID))
		writeDomainError(w, err)
		return
	}

	i := result.Intervention
	response := map[string]interface{}{
		"intervention_id": i.ID,
		"status":          string(i.Status),
		"successful":      i.Successful(),
	}
	if i.FinalRiskScore != nil {
		response["final_risk_score"] = *i.FinalRiskScore
	}
	if i.Effectiveness != nil {
		response["effectiveness"] = *i.Effectiveness
	}

	writeJSON(w, http.StatusOK, response)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListNotifications handles GET /api/v1/notifications
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	if s.deps.NotificationRepo == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notifications not configured")
		return
	}

	// The recipient defaults to the authenticated teacher; admins may
	// inspect any inbox.
	recipientID := ""
	if session := getSession(r.Context()); session != nil {
		recipientID = session.TeacherID
		if session.Role == auth.RoleAdmin {
			recipientID = getQueryParam(r, "recipient_id", recipientID)
		}
	} else {
		recipientID = getQueryParam(r, "recipient_id", "")
	}
	if recipientID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "No recipient resolved for this session")
		return
	}

	limit := getQueryParamInt(r, "limit", 50)
	items, err := s.deps.NotificationRepo.UnreadForRecipient(r.Context(), recipientID, limit)
	if err != nil {
		s.logger.Error("failed to list notifications", logger.Err(err), logger.TeacherID(recipientID))
		writeDomainError(w, err)
		return
	}

	unread, err := s.deps.NotificationRepo.CountUnread(r.Context(), recipientID)
	if err != nil {
		unread = len(items)
	}

	rows := make([]map[string]interface{}, 0, len(items))
	for _, n := range items {
		rows = append(rows, map[string]interface{}{
			"id":         n.ID,
			"student_id": n.StudentID,
			"type":       string(n.Type),
			"title":      n.Title,
			"message":    n.Message,
			"created_at": n.CreatedAt,
		})
	}

	meta := &ResponseMeta{TotalCount: unread}
	writeJSONWithMeta(w, r, http.StatusOK, rows, meta)
}

// handleMarkNotificationRead handles POST /api/v1/notifications/{id}/read
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notificationID := r.PathValue("id")
	if s.deps.NotificationRepo == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notifications not configured")
		return
	}

	if err := s.deps.NotificationRepo.MarkRead(r.Context(), notificationID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read", "notification_id": notificationID})
}

// handleMarkAllNotificationsRead handles POST /api/v1/notifications/read-all
func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if s.deps.NotificationRepo == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notifications not configured")
		return
	}

	recipientID := ""
	if session := getSession(r.Context()); session != nil {
		recipientID = session.TeacherID
		if session.Role == auth.RoleAdmin {
			recipientID = getQueryParam(r, "recipient_id", recipientID)
		}
	} else {
		recipientID = getQueryParam(r, "recipient_id", "")
	}
	if recipientID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "No recipient resolved for this session")
		return
	}

	marked, err := s.deps.NotificationRepo.MarkAllRead(r.Context(), recipientID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "read", "marked": marked})
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type recalculateRequest struct {
	Concurrency int `json:"concurrency,omitempty"`
}

// handleRecalculateAll handles POST /api/v1/admin/recalculate (admin only).
func (s *Server) handleRecalculateAll(w http.ResponseWriter, r *http.Request) {
	if s.deps.RecalculateAllHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Recalculation handler not configured")
		return
	}

	var req recalculateRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
			return
		}
	}

	cmd := command.RecalculateAllRisksCommand{
		Concurrency: req.Concurrency,
		Reason:      "manual",
	}

	result, err := s.deps.RecalculateAllHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to recalculate risks", logger.Err(err))
		writeDomainError(w, err)
		return
	}

	failures := make(map[string]string, len(result.Errors))
	for id, ferr := range result.Errors {
		failures[id] = ferr.Error()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_students":  result.TotalStudents,
		"assessed":        result.Assessed,
		"failed":          result.Failed,
		"high_risk_count": result.HighRiskCount,
		"duration":        result.Duration.String(),
		"started_at":      result.StartedAt,
		"completed_at":    result.CompletedAt,
		"failures":        failures,
	})
}
