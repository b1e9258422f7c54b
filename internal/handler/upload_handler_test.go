package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/gatehouse/internal/upload"
)

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write(content)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadAndServe(t *testing.T) {
	store := upload.NewMemoryStore(0)
	h := NewUploadHandler(store, 0)

	body, contentType := multipartBody(t, "file", "photo.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp struct {
		URL string `json:"url"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if !strings.HasPrefix(resp.URL, "/uploads/") {
		t.Fatalf("url = %q", resp.URL)
	}

	// 返ってきたURLで取得できること
	r := chi.NewRouter()
	r.Get("/uploads/{id}", h.Serve)

	getReq := httptest.NewRequest(http.MethodGet, resp.URL, nil)
	getW := httptest.NewRecorder()
	r.ServeHTTP(getW, getReq)

	if getW.Code != http.StatusOK {
		t.Fatalf("serve status = %d, want 200", getW.Code)
	}
	if getW.Body.String() != "png-bytes" {
		t.Errorf("body = %q", getW.Body.String())
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	h := NewUploadHandler(upload.NewMemoryStore(0), 0)

	body, contentType := multipartBody(t, "other", "photo.png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpload_TooLarge(t *testing.T) {
	// ストア側の上限で弾かれること
	h := NewUploadHandler(upload.NewMemoryStore(4), 0)

	body, contentType := multipartBody(t, "file", "photo.png", []byte("oversized-content"))
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413: %s", w.Code, w.Body.String())
	}
}

func TestServe_NotFound(t *testing.T) {
	h := NewUploadHandler(upload.NewMemoryStore(0), 0)

	r := chi.NewRouter()
	r.Get("/uploads/{id}", h.Serve)

	req := httptest.NewRequest(http.MethodGet, "/uploads/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
