package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/gatehouse/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	StatusObserver    middleware.StatusObserver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	SessionFinder     middleware.SessionFinder

	// 勤務シェル
	Shell    ShellInterface
	Identity IdentityProvider

	// コレクションリソース
	Resources *Resources
	// IncidentsCache は引き継ぎ確定時に破棄するIncident一覧キャッシュ
	IncidentsCache Invalidator

	// 集計・周辺機能
	Dashboard *DashboardHandler
	Notify    *NotifyHandler
	Export    *ExportHandler
	Uploads   *UploadHandler

	// /metrics 用ハンドラー
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → (保護ルートのみ) Shift → RateLimit(General/Mutation)
//
// 勤務開始と状態確認（/api/shift, /start, /whoami）・ヘルスチェック・
// メトリクス・アップロード参照はセッションゲートの外に置く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusObserver))

	shiftHandler := NewShiftHandler(deps.Shell, deps.Identity, deps.IncidentsCache)

	// --- セッション不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// 勤務の開始と状態確認はセッションの有無にかかわらず使える。
	// 終了はアクティブな勤務を持つ呼び出しだけに許す（保護ルート側）。
	r.Route("/api/shift", func(r chi.Router) {
		r.Get("/", shiftHandler.Status)
		r.Post("/start", shiftHandler.Start)
		r.Get("/whoami", shiftHandler.WhoAmI)
	})

	// アップロード参照は画像表示用の素のGET
	r.Get("/uploads/{id}", deps.Uploads.Serve)

	// --- 勤務セッションが必要なルート ---
	// ミドルウェアスタック: Shift → RateLimit(General) → RateLimit(Mutation)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewShiftMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(deps.RateLimiter.MutationMiddleware())

		rs := deps.Resources

		// 勤務終了
		r.Post("/api/shift/end", shiftHandler.End)

		// ダッシュボード
		r.Get("/api/dashboard", deps.Dashboard.Summary)

		// 荷物
		r.Route("/api/packages", func(r chi.Router) {
			rs.Packages.Mount(r)
			r.Post("/{id}/pickup", rs.PickUpPackage)
			r.Post("/{id}/return", rs.ReturnPackage)
			r.Get("/{id}/notify", deps.Notify.PackageLink)
		})

		// 出来事・引き継ぎ記録
		r.Route("/api/incidents", func(r chi.Router) {
			rs.Incidents.Mount(r)
		})

		// 従業員
		r.Route("/api/employees", func(r chi.Router) {
			rs.Employees.Mount(r)
		})

		// 勤怠
		r.Route("/api/time-records", func(r chi.Router) {
			r.Get("/export", deps.Export.Timesheet)
			rs.TimeRecords.Mount(r)
		})

		// 住民
		r.Route("/api/residents", func(r chi.Router) {
			rs.Residents.Mount(r)
		})

		// 預かり品
		r.Route("/api/received-items", func(r chi.Router) {
			rs.ReceivedItems.Mount(r)
			r.Post("/{id}/pickup", rs.PickUpReceivedItem)
			r.Get("/{id}/notify", deps.Notify.ItemLink)
		})

		// 配達員と来訪記録
		r.Route("/api/delivery-persons", func(r chi.Router) {
			rs.DeliveryPersons.Mount(r)
		})
		r.Route("/api/delivery-visits", func(r chi.Router) {
			rs.DeliveryVisits.Mount(r)
		})

		// 取引先
		r.Route("/api/companies", func(r chi.Router) {
			rs.Companies.Mount(r)
		})

		// 貸出物
		r.Route("/api/borrowed-materials", func(r chi.Router) {
			rs.Materials.Mount(r)
			r.Post("/{id}/return", rs.ReturnMaterial)
		})

		// 来訪者
		r.Route("/api/visitors", func(r chi.Router) {
			rs.Visitors.Mount(r)
			r.Post("/{id}/checkout", rs.CheckOutVisitor)
		})

		// メモ帳と引き継ぎ
		r.Route("/api/notepad", func(r chi.Router) {
			r.Get("/", shiftHandler.Notepad)
			r.Post("/open", shiftHandler.OpenNotepad)
			r.Post("/raise", shiftHandler.RaiseNotepad)
			r.Put("/text", shiftHandler.SetText)
			r.Post("/minimize", shiftHandler.MinimizeNotepad)
			r.Post("/maximize", shiftHandler.MaximizeNotepad)
			r.Post("/close", shiftHandler.CloseNotepad)
		})
		r.Route("/api/handover", func(r chi.Router) {
			r.Post("/request", shiftHandler.RequestHandover)
			r.Post("/confirm", shiftHandler.ConfirmHandover)
			r.Post("/cancel", shiftHandler.CancelHandover)
		})

		// 写真アップロード
		r.Post("/api/uploads", deps.Uploads.Upload)
	})

	return r
}
