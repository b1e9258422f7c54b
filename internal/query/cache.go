// Package query はコレクション一覧のキャッシュ層を提供する。
//
// 画面遷移のたびに同じ一覧を引き直さないよう、エンティティ名ごとの
// 一覧結果を鮮度ウィンドウ（既定30秒）内で再利用する。ミューテーション
// 後は呼び出し側がInvalidateして次回の取得を強制する。
package query

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL は一覧キャッシュの既定の鮮度ウィンドウ。
const DefaultTTL = 30 * time.Second

// Lister はキャッシュ対象の一覧取得元。repository.Collectionの部分集合。
type Lister[T any] interface {
	List(ctx context.Context, sortKey string, limit int) ([]T, error)
	Name() string
}

// CacheObserver はヒット・ミスの計測フック。metrics.Collectorの部分集合。
type CacheObserver interface {
	RecordCacheHit(entity string)
	RecordCacheMiss(entity string)
}

type entry[T any] struct {
	records   []T
	fetchedAt time.Time
}

// Cache は1エンティティ分の一覧キャッシュ。
// ソート・件数指定の組ごとに別エントリを持つ。
type Cache[T any] struct {
	source Lister[T]
	ttl    time.Duration
	obs    CacheObserver
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]entry[T]
}

// NewCache はCacheを生成する。ttlが0以下ならDefaultTTLを使う。obsはnil可。
func NewCache[T any](source Lister[T], ttl time.Duration, obs CacheObserver) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{
		source:  source,
		ttl:     ttl,
		obs:     obs,
		now:     time.Now,
		entries: make(map[string]entry[T]),
	}
}

// Name はキャッシュ対象のエンティティ名を返す。
func (c *Cache[T]) Name() string {
	return c.source.Name()
}

// List は鮮度ウィンドウ内ならキャッシュ済みの一覧を返し、
// 期限切れ・未取得なら取得元から引き直してキャッシュする。
func (c *Cache[T]) List(ctx context.Context, sortKey string, limit int) ([]T, error) {
	key := fmt.Sprintf("%s|%d", sortKey, limit)

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		records := e.records
		c.mu.Unlock()
		if c.obs != nil {
			c.obs.RecordCacheHit(c.source.Name())
		}
		return records, nil
	}
	c.mu.Unlock()

	if c.obs != nil {
		c.obs.RecordCacheMiss(c.source.Name())
	}

	records, err := c.source.List(ctx, sortKey, limit)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry[T]{records: records, fetchedAt: c.now()}
	c.mu.Unlock()

	return records, nil
}

// Invalidate はこのエンティティのキャッシュを全て破棄する。
// create/update/delete後に呼び、全ビューの再取得を促す。
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]entry[T])
	c.mu.Unlock()
}
