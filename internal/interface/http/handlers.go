package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/campus-hub/student-records/internal/domain/account"
	"github.com/campus-hub/student-records/internal/domain/shared"
	"github.com/campus-hub/student-records/internal/domain/student"
	"github.com/campus-hub/student-records/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// respondError maps domain errors onto HTTP statuses.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsDuplicateKey(err):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, shared.ErrAuthentication):
		writeJSONError(w, http.StatusUnauthorized, "bad_credentials", "Invalid username or password")
	case errors.Is(err, shared.ErrExpired):
		writeJSONError(w, http.StatusUnauthorized, "session_expired", "Session expired")
	case errors.Is(err, shared.ErrInvalidState):
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid_state", err.Error())
	case shared.IsStoreUnavailable(err):
		s.logger.Error("backend unavailable", logger.Err(err), logger.String("path", r.URL.Path))
		writeJSONError(w, http.StatusServiceUnavailable, "store_unavailable", "Storage backend unavailable")
	default:
		s.logger.Error("unhandled error", logger.Err(err), logger.String("path", r.URL.Path))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// decodeBody decodes a JSON request body into dest.
func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return false
	}
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// VIEWS
// ══════════════════════════════════════════════════════════════════════════════

// studentView is the API representation of a student. The grade mean is
// recomputed on every read, never stored.
type studentView struct {
	ID        string             `json:"id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Phone     string             `json:"phone"`
	Class     string             `json:"class"`
	Grades    map[string]float64 `json:"grades"`
	Mean      float64            `json:"mean"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toStudentView(st *student.Student) studentView {
	return studentView{
		ID:        st.ID,
		FirstName: st.FirstName,
		LastName:  st.LastName,
		Phone:     st.Phone,
		Class:     st.Class,
		Grades:    st.Grades,
		Mean:      st.Mean(),
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
}

func toStudentViews(students []*student.Student) []studentView {
	views := make([]studentView, 0, len(students))
	for _, st := range students {
		views = append(views, toStudentView(st))
	}
	return views
}

// accountView is the API representation of an account. The credential
// digest never leaves the service.
type accountView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	StudentID string    `json:"student_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAccountView(a *account.Account) accountView {
	return accountView{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role.String(),
		StudentID: a.StudentID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":    "Student Records API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":   "/health",
			"login":    "/api/v1/auth/login",
			"students": "/api/v1/students",
			"rankings": "/api/v1/rankings",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth reports the reachability of both storage backends. A dead
// cache degrades performance, not correctness, so it flips the status to
// "degraded" rather than failing the check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "healthy",
		"uptime": s.Uptime().String(),
	}
	status := http.StatusOK

	if s.deps.PingStore != nil {
		if err := s.deps.PingStore(r.Context()); err != nil {
			health["status"] = "unhealthy"
			health["store"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			health["store"] = "ok"
		}
	}

	if s.deps.PingCache != nil {
		if err := s.deps.PingCache(r.Context()); err != nil {
			if health["status"] == "healthy" {
				health["status"] = "degraded"
			}
			health["cache"] = err.Error()
		} else {
			health["cache"] = "ok"
		}
	}

	writeJSON(w, status, health)
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleLogin handles POST /api/v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sess, err := s.deps.Auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     sess.Token,
		AccountID: sess.Subject.AccountID,
		Username:  sess.Subject.Username,
		Role:      sess.Subject.Role.String(),
		ExpiresAt: sess.ExpiresAt,
	})
}

// handleLogout handles POST /api/v1/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Auth.Revoke(r.Context(), bearerToken(r)); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// handleWhoAmI handles GET /api/v1/auth/session
func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "No session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": sess.Subject.AccountID,
		"username":   sess.Subject.Username,
		"role":       sess.Subject.Role.String(),
		"issued_at":  sess.IssuedAt,
		"expires_at": sess.ExpiresAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type studentRequest struct {
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Phone     string             `json:"phone"`
	Class     string             `json:"class"`
	Grades    map[string]float64 `json:"grades,omitempty"`
}

// handleCreateStudent handles POST /api/v1/students
func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st := student.New(req.FirstName, req.LastName, req.Phone, req.Class)
	for subject, grade := range req.Grades {
		if err := st.SetGrade(subject, grade); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	created, err := s.deps.Students.Create(r.Context(), st)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toStudentView(created))
}

// handleListStudents handles GET /api/v1/students
// Optional filters: ?class= (exact) and ?last_name= (case-insensitive
// substring).
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	var filters []shared.Filter
	if class := getQueryParam(r, "class", ""); class != "" {
		filters = append(filters, shared.Equals("class", class))
	}
	if lastName := getQueryParam(r, "last_name", ""); lastName != "" {
		filters = append(filters, shared.ContainsCI("last_name", lastName))
	}

	students, err := s.deps.Students.Query(r.Context(), filters)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentViews(students))
}

// handleGetStudent handles GET /api/v1/students/{id}
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID is required")
		return
	}

	st, err := s.deps.Students.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentView(st))
}

// handleGetStudentByPhone handles GET /api/v1/students/phone/{phone}
func (s *Server) handleGetStudentByPhone(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")
	if phone == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Phone number is required")
		return
	}

	st, err := s.deps.Students.GetByPhone(r.Context(), phone)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentView(st))
}

// handleUpdateStudent handles PUT /api/v1/students/{id}
// The request body carries the full attribute set; the stored record is
// replaced wholesale.
func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID is required")
		return
	}

	var req studentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st := student.New(req.FirstName, req.LastName, req.Phone, req.Class)
	st.ID = id
	for subject, grade := range req.Grades {
		if err := st.SetGrade(subject, grade); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	if err := s.deps.Students.Save(r.Context(), st); err != nil {
		s.respondError(w, r, err)
		return
	}

	updated, err := s.deps.Students.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentView(updated))
}

// handleDeleteStudent handles DELETE /api/v1/students/{id}
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID is required")
		return
	}

	if err := s.deps.Students.Remove(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type gradeRequest struct {
	Grade float64 `json:"grade"`
}

// handleSetGrade handles PUT /api/v1/students/{id}/grades/{subject}
func (s *Server) handleSetGrade(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	subject := r.PathValue("subject")
	if id == "" || subject == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Student ID and subject are required")
		return
	}

	var req gradeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st, err := s.deps.Students.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := st.SetGrade(subject, req.Grade); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.deps.Students.Save(r.Context(), st); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentView(st))
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRankings handles GET /api/v1/rankings
func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	ranked, err := s.deps.Students.RankByMean(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentViews(ranked))
}

// handleTopStudents handles GET /api/v1/rankings/top?n=
func (s *Server) handleTopStudents(w http.ResponseWriter, r *http.Request) {
	n := getQueryParamInt(r, "n", 3)

	top, err := s.deps.Students.TopStudents(r.Context(), n)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentViews(top))
}

// handleClassMean handles GET /api/v1/classes/{class}/mean
func (s *Server) handleClassMean(w http.ResponseWriter, r *http.Request) {
	class := r.PathValue("class")
	if class == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Class is required")
		return
	}

	mean, err := s.deps.Students.ClassMean(r.Context(), class)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"class": class,
		"mean":  mean,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type accountRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	StudentID string `json:"student_id,omitempty"`
	Password  string `json:"password,omitempty"`
}

// handleCreateAccount handles POST /api/v1/accounts
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	a := account.New(req.Username, req.Email, account.Role(req.Role))
	a.StudentID = req.StudentID

	created, err := s.deps.Accounts.Create(r.Context(), a, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountView(created))
}

// handleListAccounts handles GET /api/v1/accounts
// Optional filter: ?role=
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	var filters []shared.Filter
	if role := getQueryParam(r, "role", ""); role != "" {
		filters = append(filters, shared.Equals("role", role))
	}

	accounts, err := s.deps.Accounts.Query(r.Context(), filters)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, toAccountView(a))
	}

	writeJSON(w, http.StatusOK, views)
}

// handleGetAccount handles GET /api/v1/accounts/{id}
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Account ID is required")
		return
	}

	a, err := s.deps.Accounts.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountView(a))
}

// handleUpdateAccount handles PUT /api/v1/accounts/{id}
// The credential digest is preserved; passwords change only through the
// dedicated password endpoint.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Account ID is required")
		return
	}

	var req accountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	existing, err := s.deps.Accounts.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	existing.Username = req.Username
	existing.Email = req.Email
	existing.Role = account.Role(req.Role)
	existing.StudentID = req.StudentID

	if err := s.deps.Accounts.Save(r.Context(), existing); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountView(existing))
}

// handleDeleteAccount handles DELETE /api/v1/accounts/{id}
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Account ID is required")
		return
	}

	if err := s.deps.Accounts.Remove(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type passwordRequest struct {
	Password string `json:"password"`
}

// handleChangePassword handles PUT /api/v1/accounts/{id}/password
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Account ID is required")
		return
	}

	var req passwordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.deps.Accounts.ChangePassword(r.Context(), id, req.Password); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}
