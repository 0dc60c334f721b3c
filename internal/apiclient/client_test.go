package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raghq/docpipe/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestGetDocument(t *testing.T) {
	id := uuid.New()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/documents/"+id.String(), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.Document{ID: id, Name: "notes.md", Status: models.StatusProcessed})
	})

	doc, err := client.GetDocument(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, models.StatusProcessed, doc.Status)
}

func TestGetDocument_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "document not found"})
	})

	_, err := client.GetDocument(t.Context(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDocument_ServerErrorIsNotNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "database down"})
	})

	_, err := client.GetDocument(t.Context(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "database down")
}

func TestList_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"documents": []models.Document{}, "count": 0})
	})

	docs, err := client.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestAnalysis_MissingEndpointDegrades(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.Analysis(t.Context(), uuid.New())
	assert.ErrorIs(t, err, ErrAnalysisUnsupported)
}

func TestAnalysis_Success(t *testing.T) {
	id := uuid.New()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/documents/"+id.String()+"/analysis", r.URL.Path)
		json.NewEncoder(w).Encode(models.AnalysisResult{
			DocumentID: id.String(),
			PostgreSQL: models.PostgresSection{Exists: true, ChunkCount: 5},
			Embeddings: models.EmbeddingsSection{TotalCount: 5, DistinctChunks: 5},
		})
	})

	res, err := client.Analysis(t.Context(), id)
	require.NoError(t, err)
	assert.True(t, res.PostgreSQL.Exists)
	assert.Equal(t, 5, res.Embeddings.TotalCount)
}

func TestUploadText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Name string `json:"name"`
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "memo", body.Name)
		assert.Equal(t, "hello world", body.Text)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Document{ID: uuid.New(), Name: body.Name, Status: models.StatusUploaded})
	})

	doc, err := client.UploadText(t.Context(), "hello world", "memo")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUploaded, doc.Status)
}

func TestUploadFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "input.txt", header.Filename)
		assert.Equal(t, "custom-name", r.FormValue("name"))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Document{ID: uuid.New(), Name: "custom-name"})
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("file content"), 0o644))

	doc, err := client.UploadFile(t.Context(), path, "custom-name")
	require.NoError(t, err)
	assert.Equal(t, "custom-name", doc.Name)
}
