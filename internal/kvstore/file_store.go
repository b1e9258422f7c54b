package kvstore

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore はストア全体を単一のJSONファイルに永続化するStore実装。
//
// ファイル形式はキー→生JSON値のオブジェクト。読み込み時にファイルが
// 存在しない・壊れている場合は空のストアとして扱う（破損は表面化させない）。
// 書き込みは一時ファイル＋renameで行い、途中で落ちても旧内容が残る。
//
// ロックはプロセス内のミューテックスのみで、同一ファイルを共有する
// 複数プロセスの書き込みは後勝ちになる。想定運用は1受付1オペレーター。
type FileStore struct {
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

// NewFileStore は指定パスのファイルを読み込んでFileStoreを生成する。
// ディレクトリが無ければ作成する。
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	fs := &FileStore{
		path: path,
		data: make(map[string]json.RawMessage),
	}
	fs.load()
	return fs, nil
}

// load はバックファイルを読み込む。パース失敗は空ストア扱い。
func (fs *FileStore) load() {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		return
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Warn("store file is corrupt, starting empty",
			slog.String("path", fs.path),
			slog.String("error", err.Error()),
		)
		return
	}
	fs.data = data
}

// flush はストア全体をアトミックに書き出す。
// 呼び出し側がミューテックスを保持していること。
func (fs *FileStore) flush() error {
	raw, err := json.MarshalIndent(fs.data, "", "  ")
	if err != nil {
		return err
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, fs.path)
}

// Get はキーに対応する生の値を返す。
func (fs *FileStore) Get(key string) ([]byte, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	v, ok := fs.data[key]
	if !ok {
		return nil, false, nil
	}
	// 呼び出し側の変更から内部状態を守るためコピーを返す
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Put はキーに値を保存し、ストア全体を書き出す。
func (fs *FileStore) Put(key string, value []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	v := make(json.RawMessage, len(value))
	copy(v, value)
	fs.data[key] = v
	return fs.flush()
}

// Delete はキーを削除する。存在しないキーの削除は何もしない。
func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.data[key]; !ok {
		return nil
	}
	delete(fs.data, key)
	return fs.flush()
}

// Keys は保存されている全キーを返す。
func (fs *FileStore) Keys() ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	keys := make([]string, 0, len(fs.data))
	for k := range fs.data {
		keys = append(keys, k)
	}
	return keys, nil
}
