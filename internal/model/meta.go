// Package model はドメインモデルを定義する。
package model

import "time"

// Meta は全コレクションのレコードが共通して持つ監査フィールドを表す。
// ID は作成時に払い出され、レコードの生存期間を通じて不変・再利用なし。
// RegisteredBy / RegisteredByID は作成時のアクティブセッションから記録される。
type Meta struct {
	ID             string    `json:"id"`
	CreatedDate    time.Time `json:"created_date"`
	RegisteredBy   string    `json:"registered_by,omitempty"`
	RegisteredByID string    `json:"registered_by_id,omitempty"`
}

// RecordID はレコードIDを返す。
func (m *Meta) RecordID() string {
	return m.ID
}

// SystemActor はアクティブセッションが無い状態で作成されたレコードの
// 帰属に使う番兵値。
const SystemActor = "system"

// TimestampLayout は作成・操作時刻の保存形式。ミリ秒を固定幅で刻み、
// 文字列としての辞書順が時刻順と一致することを保証する
// （RFC3339Nanoは末尾ゼロを落とすため同一秒内で順序が崩れる）。
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// NowStamp は現在時刻（UTC）をTimestampLayoutで整形して返す。
func NowStamp() string {
	return time.Now().UTC().Format(TimestampLayout)
}
