// Package session は勤務セッションのスタブを提供する。
//
// 認証は行わない。名簿から名前を選ぶだけの「勤務者の識別」であり、
// 合言葉の検査は勤務シェル側の責務。セッションは単一キーに保存される
// シングルトンレコードで、勤務開始で作成・勤務終了で削除される。
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hitoshi/gatehouse/internal/kvstore"
	"github.com/hitoshi/gatehouse/internal/model"
)

// sessionKey はセッションレコードの格納キー。
const sessionKey = "gatehouse_session"

// Service は勤務セッションの読み書きを提供する。
type Service struct {
	store   kvstore.Store
	latency kvstore.Simulator
}

// NewService はServiceを生成する。latencyはnil可。
func NewService(store kvstore.Store, latency kvstore.Simulator) *Service {
	if latency == nil {
		latency = kvstore.None()
	}
	return &Service{store: store, latency: latency}
}

// Get は現在のセッションを返す。未保存・パース失敗は不在（nil）として扱う。
func (s *Service) Get(ctx context.Context) (*model.Session, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return nil, err
	}

	raw, ok, err := s.store.Get(sessionKey)
	if err != nil || !ok {
		return nil, nil
	}

	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, nil
	}
	return &sess, nil
}

// Login は指定の身元で新しいセッションを書き込む。
// 既存セッションは無条件に上書きされ、勤務開始時刻は現在時刻になる。
func (s *Service) Login(ctx context.Context, personID, personName string) (*model.Session, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return nil, err
	}

	sess := &model.Session{
		ID:         personID,
		Name:       personName,
		ShiftStart: time.Now().UTC(),
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(sessionKey, raw); err != nil {
		slog.Error("failed to save session", slog.String("error", err.Error()))
	}
	return sess, nil
}

// Logout はセッションレコードを削除する。
func (s *Service) Logout(ctx context.Context) error {
	if err := s.latency.Wait(ctx); err != nil {
		return err
	}

	if err := s.store.Delete(sessionKey); err != nil {
		slog.Error("failed to remove session", slog.String("error", err.Error()))
	}
	return nil
}

// WhoAmI はレガシー互換の表示用アイデンティティを返す。セッション不在ならnil。
func (s *Service) WhoAmI(ctx context.Context) (*model.Identity, error) {
	sess, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	return &model.Identity{
		FullName: sess.Name,
		Email:    "on-shift-operator",
	}, nil
}

// Current はrepository.SessionSourceを実装する。
// 帰属フィールドの解決用で、エラーは不在として扱う。
func (s *Service) Current(ctx context.Context) *model.Session {
	sess, err := s.Get(ctx)
	if err != nil {
		return nil
	}
	return sess
}
