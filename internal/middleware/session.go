// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/gatehouse/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// operatorContextKey はリクエストコンテキストに勤務中オペレーターを格納するためのキー。
var operatorContextKey = contextKey("operator")

// SessionFinder は勤務セッションの取得に必要なインターフェース。
// session.Serviceの部分集合として定義する。
type SessionFinder interface {
	Get(ctx context.Context) (*model.Session, error)
}

// NewShiftMiddleware は勤務セッションの有無を検証するミドルウェアを返す。
//
// セッションはタブ1枚・オペレーター1人を前提としたシングルトンで、
// リクエストごとの資格情報は存在しない。勤務が開始されていなければ
// 401を返し、勤務中ならオペレーターの身元をリクエストコンテキストに注入する。
func NewShiftMiddleware(sessions SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Get(r.Context())
			if err != nil || sess == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewShiftNotActiveError())
				return
			}

			ctx := context.WithValue(r.Context(), operatorContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OperatorFromContext はリクエストコンテキストから勤務中オペレーターを取得する。
// シフトミドルウェアを通過したリクエストでのみ有効。
func OperatorFromContext(ctx context.Context) (*model.Session, error) {
	sess, ok := ctx.Value(operatorContextKey).(*model.Session)
	if !ok || sess == nil {
		return nil, fmt.Errorf("operator not found in context")
	}
	return sess, nil
}

// ContextWithOperator はコンテキストにオペレーターを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithOperator(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, operatorContextKey, sess)
}
