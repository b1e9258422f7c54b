// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はオペレーターが入力する自由記述テキスト
// （引き継ぎメモ、備考欄）をサニタイズする。記録はあとで印刷用HTMLや
// 通知メッセージに素通しで埋め込まれるため、保存の時点でマークアップを
// 落としておく。bluemondayの全タグ除去ポリシーを使用する。
package security

import "github.com/microcosm-cc/bluemonday"

// TextSanitizerService は自由記述テキストのサニタイズ機能のインターフェースを定義する。
// 保存前のメモ本文・備考に使用される。
type TextSanitizerService interface {
	// Sanitize は入力からHTMLタグと危険な構造を全て除去したプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// ポリシーは許可タグなし（StrictPolicy）で、タグは中身だけ残して除去される。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からマークアップを除去したテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}
