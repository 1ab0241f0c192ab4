package catalog

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/daleplay/sync-center/internal/events"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "catalog_test.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	require.NoError(t, InitSchema(db))

	return db
}

func setupTestRouter(t *testing.T, db *sql.DB) *chi.Mux {
	t.Helper()

	repo := NewRepository(db, zerolog.Nop())
	handler := NewHandler(repo, events.NewManager(zerolog.Nop()), zerolog.Nop())

	router := chi.NewRouter()
	router.Route("/catalog", handler.Routes)
	return router
}

func createTestWork(t *testing.T, router http.Handler, title, artist string) Work {
	t.Helper()

	body, _ := json.Marshal(map[string]interface{}{
		"title":              title,
		"artist":             artist,
		"control_percentage": 80.0,
		"share_percentage":   25.0,
	})

	req := httptest.NewRequest("POST", "/catalog/works", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var work Work
	require.NoError(t, json.NewDecoder(w.Body).Decode(&work))
	return work
}

func TestHandleCreateWork(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	router := setupTestRouter(t, db)

	work := createTestWork(t, router, "Ella Baila Sola", "Eslabon Armado")

	assert.NotZero(t, work.ID)
	assert.Equal(t, "Ella Baila Sola", work.Title)
	assert.Equal(t, 80.0, work.ControlPercentage)
	assert.Equal(t, 25.0, work.SharePercentage)
}

func TestHandleCreateWork_Validation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	router := setupTestRouter(t, db)

	tests := []struct {
		name string
		body map[string]interface{}
		want string
	}{
		{"missing title", map[string]interface{}{"artist": "X"}, "title is required"},
		{"missing artist", map[string]interface{}{"title": "X"}, "artist is required"},
		{
			"control over 100",
			map[string]interface{}{"title": "X", "artist": "Y", "control_percentage": 101},
			"control_percentage",
		},
		{
			"negative share",
			map[string]interface{}{"title": "X", "artist": "Y", "share_percentage": -1},
			"share_percentage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest("POST", "/catalog/works", bytes.NewReader(body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestHandleSearchWorks(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	router := setupTestRouter(t, db)

	createTestWork(t, router, "Gatita", "Bellakath")
	createTestWork(t, router, "Presidente", "Duki")
	createTestWork(t, router, "Gata Only", "FloyyMenor")

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"all works", "", 3},
		{"match by title", "?q=Gat", 2},
		{"match by artist", "?q=Duki", 1},
		{"no matches", "?q=zzz", 0},
		{"with limit", "?limit=2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/catalog/works"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var works []Work
			require.NoError(t, json.NewDecoder(w.Body).Decode(&works))
			assert.Len(t, works, tt.count)
		})
	}
}

func TestHandleSearchWorks_InvalidLimit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	router := setupTestRouter(t, db)

	for _, limit := range []string{"0", "-5", "9999", "abc"} {
		req := httptest.NewRequest("GET", "/catalog/works?limit="+limit, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}
}

func TestHandleGetWork(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	router := setupTestRouter(t, db)

	created := createTestWork(t, router, "Remember Me", "Maria Becerra")

	req := httptest.NewRequest("GET", fmt.Sprintf("/catalog/works/%d", created.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var work Work
	require.NoError(t, json.NewDecoder(w.Body).Decode(&work))
	assert.Equal(t, created.ID, work.ID)
	assert.Equal(t, "Remember Me", work.Title)
}

func TestHandleGetWork_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	router := setupTestRouter(t, db)

	req := httptest.NewRequest("GET", "/catalog/works/999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleUpdateWork(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	router := setupTestRouter(t, db)

	created := createTestWork(t, router, "Old Title", "Old Artist")

	body, _ := json.Marshal(map[string]interface{}{
		"title":              "New Title",
		"artist":             "New Artist",
		"control_percentage": 60.0,
		"share_percentage":   50.0,
	})
	req := httptest.NewRequest("PUT", fmt.Sprintf("/catalog/works/%d", created.ID), bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var work Work
	require.NoError(t, json.NewDecoder(w.Body).Decode(&work))
	assert.Equal(t, "New Title", work.Title)
	assert.Equal(t, 50.0, work.SharePercentage)
}

func TestHandleDeleteWork_CascadesRecordings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	router := setupTestRouter(t, db)

	created := createTestWork(t, router, "Con Altura", "Rosalia")

	// Attach a recording
	body, _ := json.Marshal(map[string]interface{}{
		"title":              "Con Altura (Original Mix)",
		"control_percentage": 70.0,
		"percentage":         30.0,
	})
	req := httptest.NewRequest("POST", fmt.Sprintf("/catalog/works/%d/recordings", created.ID), bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	// Delete the work
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/catalog/works/%d", created.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Recordings are gone too
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM recordings WHERE work_id = ?", created.ID).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestHandleCreateRecording(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	router := setupTestRouter(t, db)

	work := createTestWork(t, router, "Arranca", "Becky G")

	body, _ := json.Marshal(map[string]interface{}{
		"title":              "Arranca (feat. Omega)",
		"control_percentage": 55.0,
		"percentage":         35.0,
	})
	req := httptest.NewRequest("POST", fmt.Sprintf("/catalog/works/%d/recordings", work.ID), bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var rec Recording
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rec))
	assert.Equal(t, work.ID, rec.WorkID)
	assert.Equal(t, 35.0, rec.Percentage)

	// Listed under the work
	req = httptest.NewRequest("GET", fmt.Sprintf("/catalog/works/%d/recordings", work.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var recordings []Recording
	require.NoError(t, json.NewDecoder(w.Body).Decode(&recordings))
	assert.Len(t, recordings, 1)
}

func TestHandleCreateRecording_WorkNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	router := setupTestRouter(t, db)

	body, _ := json.Marshal(map[string]interface{}{
		"title":              "Orphan",
		"control_percentage": 55.0,
		"percentage":         35.0,
	})
	req := httptest.NewRequest("POST", "/catalog/works/42/recordings", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
