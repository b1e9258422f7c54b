// Package kvstore はキーバリュー型の永続化ストアを提供する。
//
// ブラウザのローカルストレージ相当の契約を模したもので、1キーに
// シリアライズ済みの値を1つ保持する。エンティティごとのコレクションは
// それぞれ1キー、勤務セッションは追加の単一キーに保存される。
// レイアウトのバージョニングやマイグレーションの仕組みは持たない。
package kvstore

// Store はキーバリューストアの契約を表す。
//
// 読み取りは存在しないキーに対して ok=false を返す。書き込み失敗の扱いは
// 実装依存だが、本システムでは「ログに記録して握りつぶす」実装を前提に
// 呼び出し側が組まれている（開発用スタンドインであり本番ストアではない）。
type Store interface {
	// Get はキーに対応する生の値を返す。
	Get(key string) (value []byte, ok bool, err error)
	// Put はキーに値を保存する。既存の値は上書きされる。
	Put(key string, value []byte) error
	// Delete はキーを削除する。存在しないキーの削除はエラーにならない。
	Delete(key string) error
	// Keys は保存されている全キーを返す。順序は不定。
	Keys() ([]string, error)
}
