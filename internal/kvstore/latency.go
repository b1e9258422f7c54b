package kvstore

import (
	"context"
	"time"
)

// Simulator は疑似的なネットワーク遅延を注入する。
//
// 元のモッククライアントはストレージアクセスごとに固定のスリープで
// リモートAPIを装っていた。ここでは差し替え可能にし、テストや
// 本番相当の構成ではNone()で無効化できる。
type Simulator interface {
	// Wait は1操作分の遅延を消化する。コンテキストの取り消しを尊重する。
	Wait(ctx context.Context) error
}

type fixedDelay struct {
	d time.Duration
}

// Fixed は固定遅延のSimulatorを返す。dが0以下なら遅延しない。
func Fixed(d time.Duration) Simulator {
	return &fixedDelay{d: d}
}

func (f *fixedDelay) Wait(ctx context.Context) error {
	if f.d <= 0 {
		return nil
	}

	t := time.NewTimer(f.d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type noDelay struct{}

// None は遅延しないSimulatorを返す。
func None() Simulator {
	return noDelay{}
}

func (noDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}
