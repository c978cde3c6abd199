package courses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lms/atlas/internal/authz"
	"github.com/atlas-lms/atlas/internal/shared"
)

func testRouter(t *testing.T, repo Repository) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	handler := NewHandler(logger, NewService(repo, nil, nil, nil, logger))
	r := chi.NewRouter()
	r.Route("/courses", handler.MountRoutes)
	return r
}

func doJSON(t *testing.T, router http.Handler, p *authz.Principal, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if p != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListPaginationEnvelope(t *testing.T) {
	repo := newFakeRepo()
	for i := 0; i < 15; i++ {
		_, err := repo.Create(context.Background(), Course{
			Title:   fmt.Sprintf("course %d", i),
			Status:  authz.StatusApproved,
			OwnerID: 7,
		})
		require.NoError(t, err)
	}
	router := testRouter(t, repo)
	student := principal(3, false, authz.RoleStudent)

	rec := doJSON(t, router, student, "GET", "/courses?page=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Count    int               `json:"count"`
		Next     *string           `json:"next"`
		Previous *string           `json:"previous"`
		Results  []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, 15, env.Count)
	require.Len(t, env.Results, 10)
	require.NotNil(t, env.Next)
	require.Nil(t, env.Previous)

	rec = doJSON(t, router, student, "GET", "/courses?page=2", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, 15, env.Count)
	require.Len(t, env.Results, 5)
	require.Nil(t, env.Next)
	require.NotNil(t, env.Previous)
}

func TestCreateCourseValidation(t *testing.T) {
	router := testRouter(t, newFakeRepo())
	teacher := principal(7, false, authz.RoleTeacher)

	rec := doJSON(t, router, teacher, "POST", "/courses", map[string]any{"description": "missing title"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Contains(t, problem.Fields, "title")
}

func TestCreateCourseForbiddenForStudent(t *testing.T) {
	router := testRouter(t, newFakeRepo())
	student := principal(3, false, authz.RoleStudent)

	rec := doJSON(t, router, student, "POST", "/courses", map[string]any{
		"title": "t", "description": "d",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetCourseNotFound(t *testing.T) {
	router := testRouter(t, newFakeRepo())
	student := principal(3, false, authz.RoleStudent)

	rec := doJSON(t, router, student, "GET", "/courses/42", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, student, "GET", "/courses/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndDeleteCourseFlow(t *testing.T) {
	repo := newFakeRepo()
	router := testRouter(t, repo)
	teacher := principal(7, false, authz.RoleTeacher)

	rec := doJSON(t, router, teacher, "POST", "/courses", map[string]any{
		"title": "Go from Scratch", "description": "d", "price": 49.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, authz.StatusPending, created.Status)

	rec = doJSON(t, router, teacher, "DELETE", fmt.Sprintf("/courses/%d", created.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
