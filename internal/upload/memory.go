// Package upload は従業員写真アップロードのモック連携を提供する。
//
// 本来は外部のアップロード統合に委譲して参照URLを受け取る箇所で、
// モック実装ではプロセス内メモリに保持した一時参照を返す。
// 再起動で失われる、現セッション限りの参照であり、永続ストレージではない。
package upload

import (
	"sync"

	"github.com/google/uuid"
	"github.com/hitoshi/gatehouse/internal/model"
)

// Stored は保存済みアップロード1件を表す。
type Stored struct {
	ID       string
	MimeType string
	Data     []byte
}

// MemoryStore はアップロードをメモリ上に保持するモック実装。
type MemoryStore struct {
	maxSize int64

	mu    sync.RWMutex
	files map[string]Stored
}

// NewMemoryStore はMemoryStoreを生成する。maxSizeが0以下なら無制限。
func NewMemoryStore(maxSize int64) *MemoryStore {
	return &MemoryStore{
		maxSize: maxSize,
		files:   make(map[string]Stored),
	}
}

// Save はファイルを保存し、参照URLのパス（/uploads/{id}）を返す。
func (m *MemoryStore) Save(data []byte, mimeType string) (string, error) {
	if m.maxSize > 0 && int64(len(data)) > m.maxSize {
		return "", model.NewUploadTooLargeError(m.maxSize)
	}

	id := uuid.NewString()

	m.mu.Lock()
	m.files[id] = Stored{ID: id, MimeType: mimeType, Data: data}
	m.mu.Unlock()

	return "/uploads/" + id, nil
}

// Get は保存済みアップロードを返す。
func (m *MemoryStore) Get(id string) (Stored, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[id]
	if !ok {
		return Stored{}, model.NewUploadNotFoundError(id)
	}
	return f, nil
}

// Len は保持しているアップロード数を返す。テスト用。
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
