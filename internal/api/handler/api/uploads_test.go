// internal/api/handler/api/uploads_test.go
package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prismfin/prism/internal/api/response"
	"github.com/prismfin/prism/internal/metrics"
	"github.com/prismfin/prism/internal/storage/archive"
	"github.com/prismfin/prism/internal/upload"
	"go.uber.org/zap"
)

const testCSV = "Date,Close\n2025-01-02,10\n2025-01-03,20\n2025-01-06,30\n2025-01-07,40\n2025-01-08,50\n"

func newUploadsHandler(t *testing.T) (*UploadsHandler, *upload.Store) {
	t.Helper()
	store := upload.NewStore(10, time.Hour)
	arch, err := archive.NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	h := NewUploadsHandler(store, arch, metrics.NewRegistry(), 5<<20, zap.NewNop())
	return h, store
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadsHandler_Create(t *testing.T) {
	h, store := newUploadsHandler(t)

	body, contentType := multipartBody(t, "prices.csv", testCSV)
	req := httptest.NewRequest("POST", "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	data := resp.Data.(map[string]any)
	if data["name"] != "prices.csv" {
		t.Errorf("expected name prices.csv, got %v", data["name"])
	}
	if data["rows"].(float64) != 5 {
		t.Errorf("expected 5 rows, got %v", data["rows"])
	}

	id := data["id"].(string)
	if _, err := store.Get(id); err != nil {
		t.Errorf("dataset not in store: %v", err)
	}
}

func TestUploadsHandler_Create_BadFile(t *testing.T) {
	h, _ := newUploadsHandler(t)

	body, contentType := multipartBody(t, "notes.csv", "just some text without numbers")
	req := httptest.NewRequest("POST", "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unparseable file, got %d", w.Code)
	}
}

func TestUploadsHandler_Create_MissingField(t *testing.T) {
	h, _ := newUploadsHandler(t)

	req := httptest.NewRequest("POST", "/api/v1/uploads", bytes.NewBufferString("no multipart"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without multipart file field, got %d", w.Code)
	}
}

func TestUploadsHandler_List(t *testing.T) {
	h, store := newUploadsHandler(t)
	store.Put("a.csv", nil)
	store.Put("b.csv", nil)

	req := httptest.NewRequest("GET", "/api/v1/uploads", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	datasets := resp.Data.(map[string]any)["datasets"].([]any)
	if len(datasets) != 2 {
		t.Errorf("expected 2 datasets, got %d", len(datasets))
	}
}

func TestUploadsHandler_Get_NotFound(t *testing.T) {
	h, _ := newUploadsHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/uploads/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	var resp response.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "UPLOAD_NOT_FOUND" {
		t.Errorf("expected UPLOAD_NOT_FOUND, got %s", resp.Error.Code)
	}
}

func TestUploadsHandler_Metrics_NeutralBeta(t *testing.T) {
	h, store := newUploadsHandler(t)

	points, err := upload.Parse([]byte(testCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ds := store.Put("prices.csv", points)

	req := httptest.NewRequest("GET", "/api/v1/uploads/"+ds.ID+"/metrics", nil)
	req.SetPathValue("id", ds.ID)
	w := httptest.NewRecorder()
	h.Metrics(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	summary := resp.Data.(map[string]any)["summary"].(map[string]any)

	// Uploaded datasets carry no benchmark, so beta stays neutral.
	if summary["beta"].(float64) != 1 {
		t.Errorf("expected neutral beta, got %v", summary["beta"])
	}
	if summary["covariance"].(float64) != 0 {
		t.Errorf("expected zero covariance, got %v", summary["covariance"])
	}
	if summary["growth"].(float64) <= 0 {
		t.Errorf("expected positive growth for rising series, got %v", summary["growth"])
	}
}

func TestUploadsHandler_Forecast(t *testing.T) {
	h, store := newUploadsHandler(t)

	points, err := upload.Parse([]byte(testCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ds := store.Put("prices.csv", points)

	req := httptest.NewRequest("GET", "/api/v1/uploads/"+ds.ID+"/forecast?steps=2", nil)
	req.SetPathValue("id", ds.ID)
	w := httptest.NewRecorder()
	h.Forecast(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	forecast := resp.Data.(map[string]any)["forecast"].(map[string]any)
	pts := forecast["points"].([]any)
	if len(pts) != 2 {
		t.Fatalf("expected 2 forecast points, got %d", len(pts))
	}
	if pts[0].(float64) != 60 || pts[1].(float64) != 70 {
		t.Errorf("expected projection [60 70], got %v", pts)
	}
}

func TestUploadsHandler_Forecast_NotFound(t *testing.T) {
	h, _ := newUploadsHandler(t)

	req := httptest.NewRequest("GET", "/api/v1/uploads/gone/forecast", nil)
	req.SetPathValue("id", "gone")
	w := httptest.NewRecorder()
	h.Forecast(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
