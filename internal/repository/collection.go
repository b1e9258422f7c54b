// Package repository はキーバリューストア上の汎用コレクションアクセサを提供する。
//
// 元実装ではエンティティごとにほぼ同一のクライアントオブジェクトが
// 複製されていたが、ここではレコード型をパラメータに取る単一の
// ジェネリックなCollection型としてまとめ、エンティティごとに
// インスタンス化する。
package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/gatehouse/internal/kvstore"
	"github.com/hitoshi/gatehouse/internal/model"
)

// storageKeyPrefix はコレクションキーの名前空間プレフィックス。
const storageKeyPrefix = "gatehouse_"

// SessionSource は作成レコードの帰属先となるアクティブセッションを供給する。
// session.Serviceの部分集合として定義する。
type SessionSource interface {
	// Current は現在のセッションを返す。勤務中でなければnil。
	Current(ctx context.Context) *model.Session
}

// OpObserver はストア操作の計測フック。metrics.Collectorの部分集合。
type OpObserver interface {
	ObserveStoreOp(collection, op string, d time.Duration)
	RecordHealedRecords(n int)
}

// Collection は1コレクション分のlist/create/update/delete操作を提供する。
//
// レコードはフィールドバッグ（JSONオブジェクト）としてまとめて1キーに
// 保存され、境界では型付き構造体Tとして出入りする。全操作はコレクション
// 全体のread-modify-writeで、ロックはストア実装任せ（§単一オペレーター前提）。
type Collection[T any] struct {
	store   kvstore.Store
	name    string
	latency kvstore.Simulator
	session SessionSource
	obs     OpObserver
}

// NewCollection は指定コレクション名のCollectionを生成する。
// sessionとobsはnil可（帰属はsystem番兵、計測は無効になる）。
func NewCollection[T any](store kvstore.Store, name string, latency kvstore.Simulator, session SessionSource, obs OpObserver) *Collection[T] {
	if latency == nil {
		latency = kvstore.None()
	}
	return &Collection[T]{
		store:   store,
		name:    name,
		latency: latency,
		session: session,
		obs:     obs,
	}
}

// Name はコレクション名を返す。
func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) key() string {
	return storageKeyPrefix + c.name
}

// load はコレクション全体を読み込む。キーが無い・値が壊れている場合は
// 空として扱う（破損は表面化させない）。
func (c *Collection[T]) load() []map[string]any {
	raw, ok, err := c.store.Get(c.key())
	if err != nil || !ok {
		return nil
	}

	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

// save はコレクション全体を書き戻す。書き込み失敗はログに記録して握りつぶす。
func (c *Collection[T]) save(list []map[string]any) {
	raw, err := json.Marshal(list)
	if err != nil {
		slog.Error("failed to encode collection",
			slog.String("collection", c.name),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := c.store.Put(c.key(), raw); err != nil {
		slog.Error("failed to save collection",
			slog.String("collection", c.name),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Collection[T]) observe(op string, start time.Time) {
	if c.obs != nil {
		c.obs.ObserveStoreOp(c.name, op, time.Since(start))
	}
}

// List はコレクションの全レコードを返す。
//
// IDを持たないレコードにはその場でIDを払い出し、修正済みの
// コレクションを一度だけ書き戻す（セルフヒーリング）。
// sortKeyは "-" プレフィックスで降順。比較は緩い文字列比較で、
// フィールド欠損は空文字列として扱う。limitが正なら先頭limit件に切り詰める。
func (c *Collection[T]) List(ctx context.Context, sortKey string, limit int) ([]T, error) {
	start := time.Now()
	defer c.observe("list", start)

	if err := c.latency.Wait(ctx); err != nil {
		return nil, err
	}

	list := c.load()

	healed := 0
	for _, rec := range list {
		if id, _ := rec["id"].(string); id == "" {
			rec["id"] = uuid.NewString()
			healed++
		}
	}
	if healed > 0 {
		c.save(list)
		if c.obs != nil {
			c.obs.RecordHealedRecords(healed)
		}
	}

	if sortKey != "" {
		key := sortKey
		desc := strings.HasPrefix(sortKey, "-")
		if desc {
			key = sortKey[1:]
		}
		sort.SliceStable(list, func(i, j int) bool {
			a := looseString(list[i][key])
			b := looseString(list[j][key])
			if desc {
				return a > b
			}
			return a < b
		})
	}

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return decodeRecords[T](list)
}

// Create は呼び出し側のフィールドに、新規ID・作成日時・アクティブセッション
// 由来の帰属フィールドを合成してコレクション先頭に追加する（新しい順）。
func (c *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T

	start := time.Now()
	defer c.observe("create", start)

	if err := c.latency.Wait(ctx); err != nil {
		return zero, err
	}

	fields, err := encodeRecord(rec)
	if err != nil {
		return zero, err
	}

	fields["id"] = uuid.NewString()
	fields["created_date"] = model.NowStamp()

	if s := c.currentSession(ctx); s != nil {
		fields["registered_by"] = s.Name
		fields["registered_by_id"] = s.ID
	} else {
		fields["registered_by"] = model.SystemActor
		delete(fields, "registered_by_id")
	}

	list := append([]map[string]any{fields}, c.load()...)
	c.save(list)

	return decodeRecord[T](fields)
}

// Update は指定IDのレコードにpatchを浅くマージして保存する。
// patchに無い既存フィールドは保持される。IDが存在しなければNotFound。
func (c *Collection[T]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	var zero T

	start := time.Now()
	defer c.observe("update", start)

	if err := c.latency.Wait(ctx); err != nil {
		return zero, err
	}

	list := c.load()
	for _, rec := range list {
		recID, _ := rec["id"].(string)
		if recID != id {
			continue
		}
		for k, v := range patch {
			rec[k] = v
		}
		c.save(list)
		return decodeRecord[T](rec)
	}

	return zero, model.NewRecordNotFoundError(c.name, id)
}

// Delete は指定IDのレコードを削除する。不在は成功扱い（冪等）。
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer c.observe("delete", start)

	if err := c.latency.Wait(ctx); err != nil {
		return err
	}

	list := c.load()
	kept := list[:0]
	removed := false
	for _, rec := range list {
		recID, _ := rec["id"].(string)
		if recID == id {
			removed = true
			continue
		}
		kept = append(kept, rec)
	}
	if removed {
		c.save(kept)
	}
	return nil
}

func (c *Collection[T]) currentSession(ctx context.Context) *model.Session {
	if c.session == nil {
		return nil
	}
	return c.session.Current(ctx)
}

// looseString はソート比較用にフィールド値を文字列化する。
// 欠損（nil）は空文字列。文字列以外はJSON表現で比較するため、
// 数値・日付系フィールドの順序は元実装同様に未規定のまま。
func looseString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

func encodeRecord[T any](rec T) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func decodeRecord[T any](fields map[string]any) (T, error) {
	var rec T
	raw, err := json.Marshal(fields)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

func decodeRecords[T any](list []map[string]any) ([]T, error) {
	out := make([]T, 0, len(list))
	for _, fields := range list {
		rec, err := decodeRecord[T](fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
