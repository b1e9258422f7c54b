package model

import "time"

// Session は「いま誰が勤務に就いているか」を表すシングルトンレコード。
// コレクションではなく単一キーに保存され、勤務開始で作成・勤務終了で削除される。
type Session struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ShiftStart time.Time `json:"shift_start"`
}

// Identity はレガシー互換の表示用アイデンティティ。
// 旧クライアントの me() 相当で、セッションから導出される。
type Identity struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
