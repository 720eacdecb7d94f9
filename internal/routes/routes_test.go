package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haritsetu/backend/internal/auth"
	"github.com/haritsetu/backend/internal/controllers"
	"github.com/haritsetu/backend/internal/models"
	"github.com/haritsetu/backend/internal/routes"
	"github.com/haritsetu/backend/internal/services"
	"github.com/haritsetu/backend/internal/store"
)

const secret = "routes-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	tokens map[string]string
	users  map[string]models.User
}

func newTestServer(t *testing.T, opts ...services.Option) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	srv := &testServer{t: t, router: gin.New(), tokens: map[string]string{}, users: map[string]models.User{}}

	for _, u := range []models.User{
		{Email: "farmer.a@example.in", Name: "Farmer A", Role: models.RoleFarmer},
		{Email: "officer.b@example.in", Name: "Officer B", Role: models.RoleOfficer},
		{Email: "farmer.c@example.in", Name: "Farmer C", Role: models.RoleFarmer},
		{Email: "expert.e@example.in", Name: "Expert E", Role: models.RoleExpert},
	} {
		user := u
		_, err := st.CreateUserIfMissing(context.Background(), &user)
		require.NoError(t, err)
		token, _, err := auth.GenerateToken(secret, user)
		require.NoError(t, err)
		key := user.Name
		srv.tokens[key] = token
		srv.users[key] = user
	}

	routes.SetupRoutes(srv.router, routes.Dependencies{
		Users:      st,
		Grievances: services.NewGrievanceService(st, nil, opts...),
		Health:     controllers.NewHealthController(st, nil),
		JWTSecret:  secret,
	})
	return srv
}

func (s *testServer) do(method, path, as string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[as])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (s *testServer) submit(as, title, category string) models.Complaint {
	w, env := s.do(http.MethodPost, "/api/v1/complaints", as, gin.H{
		"title":       title,
		"description": "No water in the canal",
		"category":    category,
		"location":    "Sinnar",
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.Complaint](s.t, env.Data)
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	srv := newTestServer(t)

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/complaints"},
		{http.MethodGet, "/api/v1/complaints"},
		{http.MethodGet, "/api/v1/complaints/1"},
		{http.MethodPut, "/api/v1/complaints/1"},
		{http.MethodPost, "/api/v1/complaints/1/comments"},
		{http.MethodGet, "/api/v1/users/me"},
	} {
		w, env := srv.do(r.method, r.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
		assert.False(t, env.Success)
	}
}

func TestCreateComplaint(t *testing.T) {
	srv := newTestServer(t)

	c := srv.submit("Farmer A", "Water shortage", "Irrigation")

	assert.Equal(t, uint(1), c.ID)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, models.PriorityMedium, c.Priority)
	assert.Equal(t, srv.users["Farmer A"].ID, c.UserID)
	assert.Nil(t, c.AssignedTo)

	w, env := srv.do(http.MethodPost, "/api/v1/complaints", "Farmer A", gin.H{"title": "only a title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	w, _ = srv.do(http.MethodPost, "/api/v1/complaints", "Farmer A", gin.H{
		"title": "   ", "description": "d", "category": "c", "location": "l",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComplaintJSONUsesSnakeCase(t *testing.T) {
	srv := newTestServer(t)
	srv.submit("Farmer A", "Water shortage", "Irrigation")

	_, env := srv.do(http.MethodGet, "/api/v1/complaints/1", "Farmer A", nil)
	fields := decode[map[string]interface{}](t, env.Data)

	for _, key := range []string{"id", "title", "description", "category", "location", "status", "priority", "user_id", "assigned_to", "created_at", "updated_at", "updates"} {
		assert.Contains(t, fields, key)
	}
}

func TestListComplaintsByRole(t *testing.T) {
	srv := newTestServer(t)
	a := srv.submit("Farmer A", "Water shortage", "Irrigation")
	c := srv.submit("Farmer C", "Seed quality", "Inputs")

	_, env := srv.do(http.MethodGet, "/api/v1/complaints", "Farmer A", nil)
	list := decode[[]models.Complaint](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	_, env = srv.do(http.MethodGet, "/api/v1/complaints", "Expert E", nil)
	assert.Len(t, decode[[]models.Complaint](t, env.Data), 2)

	_, env = srv.do(http.MethodGet, "/api/v1/complaints?category=Inputs", "Officer B", nil)
	list = decode[[]models.Complaint](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)

	w, _ := srv.do(http.MethodGet, "/api/v1/complaints?status=reopened", "Officer B", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = srv.do(http.MethodGet, "/api/v1/complaints?limit=abc", "Officer B", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = srv.do(http.MethodGet, "/api/v1/complaints?skip=-1", "Officer B", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, env = srv.do(http.MethodGet, "/api/v1/complaints?skip=1&limit=1", "Expert E", nil)
	list = decode[[]models.Complaint](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestGetComplaintErrors(t *testing.T) {
	srv := newTestServer(t)
	srv.submit("Farmer A", "Water shortage", "Irrigation")

	w, _ := srv.do(http.MethodGet, "/api/v1/complaints/1", "Farmer C", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = srv.do(http.MethodGet, "/api/v1/complaints/99", "Farmer A", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = srv.do(http.MethodGet, "/api/v1/complaints/abc", "Farmer A", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateComplaint(t *testing.T) {
	srv := newTestServer(t)
	c := srv.submit("Farmer A", "Water shortage", "Irrigation")
	officer := srv.users["Officer B"]

	w, _ := srv.do(http.MethodPut, "/api/v1/complaints/1", "Farmer A", gin.H{"status": "closed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = srv.do(http.MethodPut, "/api/v1/complaints/1", "Expert E", gin.H{"priority": "urgent"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := srv.do(http.MethodPut, "/api/v1/complaints/1", "Officer B", gin.H{
		"assigned_to": officer.ID,
		"status":      "assigned",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Complaint](t, env.Data)
	assert.Equal(t, models.StatusAssigned, updated.Status)
	assert.Equal(t, models.PriorityMedium, updated.Priority)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, officer.ID, *updated.AssignedTo)
	assert.True(t, updated.UpdatedAt.After(c.UpdatedAt))

	w, _ = srv.do(http.MethodPut, "/api/v1/complaints/1", "Officer B", gin.H{"priority": "critical"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = srv.do(http.MethodPut, "/api/v1/complaints/42", "Officer B", gin.H{"status": "resolved"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnassignComplaint(t *testing.T) {
	srv := newTestServer(t)
	srv.submit("Farmer A", "Water shortage", "Irrigation")
	officer := srv.users["Officer B"]

	w, env := srv.do(http.MethodPut, "/api/v1/complaints/1", "Officer B", gin.H{
		"assigned_to": officer.ID,
		"status":      "assigned",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assigned := decode[models.Complaint](t, env.Data)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, officer.ID, *assigned.AssignedTo)

	w, env = srv.do(http.MethodPut, "/api/v1/complaints/1", "Officer B", gin.H{"assigned_to": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cleared := decode[models.Complaint](t, env.Data)
	assert.Nil(t, cleared.AssignedTo)
	assert.Equal(t, models.StatusAssigned, cleared.Status, "other fields are untouched")

	w, env = srv.do(http.MethodPut, "/api/v1/complaints/1", "Officer B", gin.H{"status": "in_progress", "priority": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	later := decode[models.Complaint](t, env.Data)
	assert.Nil(t, later.AssignedTo, "an absent assigned_to leaves it alone")
	assert.Equal(t, models.StatusInProgress, later.Status)
	assert.Equal(t, models.PriorityMedium, later.Priority, "null priority means unchanged")

	w, _ = srv.do(http.MethodPut, "/api/v1/complaints/1", "Officer B", gin.H{"assigned_to": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = srv.do(http.MethodPut, "/api/v1/complaints/1", "Officer B", gin.H{"assigned_to": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, env = srv.do(http.MethodGet, "/api/v1/complaints/1", "Farmer A", nil)
	final := decode[models.Complaint](t, env.Data)
	assert.Nil(t, final.AssignedTo)
}

func TestClosedLockReturnsConflict(t *testing.T) {
	srv := newTestServer(t, services.WithLockClosed(true))
	srv.submit("Farmer A", "Water shortage", "Irrigation")

	w, _ := srv.do(http.MethodPut, "/api/v1/complaints/1", "Officer B", gin.H{"status": "closed"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := srv.do(http.MethodPut, "/api/v1/complaints/1", "Officer B", gin.H{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
}

func TestCommentsFlow(t *testing.T) {
	srv := newTestServer(t)
	srv.submit("Farmer A", "Water shortage", "Irrigation")

	w, _ := srv.do(http.MethodPost, "/api/v1/complaints/1/comments", "Farmer C", gin.H{"comment": "me too"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = srv.do(http.MethodPost, "/api/v1/complaints/9/comments", "Farmer A", gin.H{"comment": "hello"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = srv.do(http.MethodPost, "/api/v1/complaints/1/comments", "Officer B", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := srv.do(http.MethodPost, "/api/v1/complaints/1/comments", "Officer B", gin.H{
		"comment":       "reviewing",
		"status_change": "in_progress",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	update := decode[models.ComplaintUpdate](t, env.Data)
	assert.Equal(t, uint(1), update.ComplaintID)
	require.NotNil(t, update.StatusChange)
	assert.Equal(t, models.StatusInProgress, *update.StatusChange)

	_, env = srv.do(http.MethodGet, "/api/v1/complaints/1", "Farmer A", nil)
	c := decode[models.Complaint](t, env.Data)
	assert.Equal(t, models.StatusInProgress, c.Status)
	require.Len(t, c.Updates, 1)
	assert.Equal(t, "reviewing", c.Updates[0].Comment)

	_, env = srv.do(http.MethodGet, "/api/v1/complaints/1/comments", "Farmer A", nil)
	comments := decode[[]models.ComplaintUpdate](t, env.Data)
	require.Len(t, comments, 1)
	assert.Equal(t, update.ID, comments[0].ID)

	w, _ = srv.do(http.MethodGet, "/api/v1/complaints/1/comments", "Farmer C", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCurrentUser(t *testing.T) {
	srv := newTestServer(t)

	w, env := srv.do(http.MethodGet, "/api/v1/users/me", "Officer B", nil)
	require.Equal(t, http.StatusOK, w.Code)
	fields := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "officer.b@example.in", fields["email"])
	assert.Equal(t, "officer", fields["role"])
	assert.NotContains(t, fields, "hashed_password")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status   string `json:"status"`
		Services map[string]struct {
			Status string `json:"status"`
		} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Services["database"].Status)
	assert.NotContains(t, body.Services, "redis")
}
