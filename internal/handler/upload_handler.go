package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/gatehouse/internal/model"
	"github.com/hitoshi/gatehouse/internal/upload"
)

// UploadStore はアップロードハンドラーが必要とするストアのインターフェース。
type UploadStore interface {
	Save(data []byte, mimeType string) (string, error)
	Get(id string) (upload.Stored, error)
}

// UploadHandler は従業員写真アップロードのHTTPハンドラー。
type UploadHandler struct {
	store   UploadStore
	maxSize int64
}

// NewUploadHandler はUploadHandlerを生成する。
// maxSizeはmultipartボディの受け付け上限（バイト）。
func NewUploadHandler(store UploadStore, maxSize int64) *UploadHandler {
	return &UploadHandler{store: store, maxSize: maxSize}
}

// uploadResponse はアップロード結果のレスポンス。
type uploadResponse struct {
	URL string `json:"url"`
}

// Upload はmultipartのfileフィールドを受け取り、参照URLを返す。
// POST /api/uploads
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+4096)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("fileフィールドのmultipartリクエストが必要です"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("ファイルの読み取りに失敗しました"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	url, err := h.store.Save(data, mimeType)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{URL: url})
}

// Serve は保存済みアップロードを返す。
// GET /uploads/{id}
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	stored, err := h.store.Get(id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", stored.MimeType)
	w.Write(stored.Data)
}
