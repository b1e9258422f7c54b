package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/gatehouse/internal/model"
)

// RepositoryInterface はリソースハンドラーが必要とする書き込み操作。
// repository.Collectionの部分集合として定義する。
type RepositoryInterface[T any] interface {
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id string, patch map[string]any) (T, error)
	Delete(ctx context.Context, id string) error
}

// ListSource は一覧の読み出し元。query.Cacheを想定し、
// ミューテーション後の破棄もここに委ねる。
type ListSource[T any] interface {
	List(ctx context.Context, sortKey string, limit int) ([]T, error)
	Invalidate()
}

// Resource は1エンティティ分のCRUDを提供する汎用HTTPハンドラー。
//
// 一覧はキャッシュ経由で全件を引き、検索（q）とフィールド等値フィルタは
// 取得後にメモリ上で適用する。元実装が画面側で行っていた絞り込みを
// サーバー側に寄せたもので、コレクション規模（数百件）ではこれで足りる。
type Resource[T any] struct {
	repo   RepositoryInterface[T]
	lister ListSource[T]

	// searchFields はqパラメータの部分一致検索の対象フィールド。
	searchFields []string
	// filterFields は等値フィルタとして受け付けるクエリパラメータ名。
	// パラメータ名とフィールド名は一致させる。
	filterFields []string
	// defaultSort はsort未指定時のソートキー。
	defaultSort string
	// validate は作成時の必須項目検査。nil可。
	validate func(rec T) *model.APIError
	// prepare は作成直前の既定値付与。nil可。
	prepare func(rec *T)
}

// ResourceOptions はNewResourceの挙動指定。
type ResourceOptions[T any] struct {
	SearchFields []string
	FilterFields []string
	DefaultSort  string
	Validate     func(rec T) *model.APIError
	Prepare      func(rec *T)
}

// NewResource はResourceを生成する。DefaultSort未指定時は作成日時の新しい順。
func NewResource[T any](repo RepositoryInterface[T], lister ListSource[T], opts ResourceOptions[T]) *Resource[T] {
	if opts.DefaultSort == "" {
		opts.DefaultSort = "-created_date"
	}
	return &Resource[T]{
		repo:         repo,
		lister:       lister,
		searchFields: opts.SearchFields,
		filterFields: opts.FilterFields,
		defaultSort:  opts.DefaultSort,
		validate:     opts.Validate,
		prepare:      opts.Prepare,
	}
}

// Mount はCRUDルーティングをrに登録する。
func (res *Resource[T]) Mount(r chi.Router) {
	r.Get("/", res.List)
	r.Post("/", res.Create)
	r.Patch("/{id}", res.Update)
	r.Delete("/{id}", res.Delete)
}

// List は一覧を返す。
// GET /?sort=-created_date&limit=50&q=検索語&status=active
func (res *Resource[T]) List(w http.ResponseWriter, r *http.Request) {
	qp := r.URL.Query()

	sortKey := qp.Get("sort")
	if sortKey == "" {
		sortKey = res.defaultSort
	}

	limit := 0
	if v := qp.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("limitは0以上の整数で指定してください"))
			return
		}
		limit = n
	}

	records, err := res.lister.List(r.Context(), sortKey, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	records = res.filter(records, qp)
	if records == nil {
		records = []T{}
	}
	writeJSON(w, http.StatusOK, records)
}

// filter はq検索とフィールド等値フィルタを適用する。
func (res *Resource[T]) filter(records []T, qp map[string][]string) []T {
	q := ""
	if vs := qp["q"]; len(vs) > 0 {
		q = strings.ToLower(strings.TrimSpace(vs[0]))
	}

	wanted := map[string]string{}
	for _, f := range res.filterFields {
		if vs := qp[f]; len(vs) > 0 && vs[0] != "" {
			wanted[f] = vs[0]
		}
	}

	if q == "" && len(wanted) == 0 {
		return records
	}

	matched := records[:0:0]
	for _, rec := range records {
		fields := recordFields(rec)
		if !matchesFilters(fields, wanted) {
			continue
		}
		if q != "" && !matchesQuery(fields, res.searchFields, q) {
			continue
		}
		matched = append(matched, rec)
	}
	return matched
}

func matchesFilters(fields map[string]any, wanted map[string]string) bool {
	for f, want := range wanted {
		got, _ := fields[f].(string)
		if got != want {
			return false
		}
	}
	return true
}

func matchesQuery(fields map[string]any, searchFields []string, q string) bool {
	for _, f := range searchFields {
		if v, _ := fields[f].(string); v != "" {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
	}
	return false
}

// recordFields は検索・フィルタ用にレコードをフィールドバッグに変換する。
func recordFields[T any](rec T) map[string]any {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

// Create は新規レコードを作成する。
// POST /
func (res *Resource[T]) Create(w http.ResponseWriter, r *http.Request) {
	var rec T
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	if res.validate != nil {
		if apiErr := res.validate(rec); apiErr != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
			return
		}
	}
	if res.prepare != nil {
		res.prepare(&rec)
	}

	created, err := res.repo.Create(r.Context(), rec)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res.lister.Invalidate()
	writeJSON(w, http.StatusCreated, created)
}

// Update は既存レコードへの部分更新を適用する。
// PATCH /{id}
func (res *Resource[T]) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	// IDはパスで特定する。ボディでの差し替えは受け付けない。
	delete(patch, "id")

	updated, err := res.repo.Update(r.Context(), id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res.lister.Invalidate()
	writeJSON(w, http.StatusOK, updated)
}

// Delete はレコードを削除する。不在でも成功を返す（冪等）。
// DELETE /{id}
func (res *Resource[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := res.repo.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	res.lister.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// applyAction は固定パッチによるドメイン操作の共通処理。
func (res *Resource[T]) applyAction(w http.ResponseWriter, r *http.Request, patch map[string]any) {
	id := chi.URLParam(r, "id")

	updated, err := res.repo.Update(r.Context(), id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res.lister.Invalidate()
	writeJSON(w, http.StatusOK, updated)
}
