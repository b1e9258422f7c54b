package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/gatehouse/internal/config"
	"github.com/hitoshi/gatehouse/internal/handler"
	"github.com/hitoshi/gatehouse/internal/kvstore"
	"github.com/hitoshi/gatehouse/internal/logger"
	"github.com/hitoshi/gatehouse/internal/metrics"
	"github.com/hitoshi/gatehouse/internal/middleware"
	"github.com/hitoshi/gatehouse/internal/model"
	"github.com/hitoshi/gatehouse/internal/query"
	"github.com/hitoshi/gatehouse/internal/repository"
	"github.com/hitoshi/gatehouse/internal/security"
	"github.com/hitoshi/gatehouse/internal/session"
	"github.com/hitoshi/gatehouse/internal/shift"
	"github.com/hitoshi/gatehouse/internal/upload"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("data_path", cfg.DataPath),
	)

	switch cmd {
	case CommandSeed:
		return runSeed(cfg)
	case CommandServe:
		return runServe(cfg)
	default:
		return runServe(cfg)
	}
}

// collections は全コレクションとその一覧キャッシュをまとめたワイヤリング結果。
type collections struct {
	packages  *repository.Collection[model.Package]
	incidents *repository.Collection[model.Incident]
	employees *repository.Collection[model.Employee]
	records   *repository.Collection[model.TimeRecord]
	residents *repository.Collection[model.Resident]
	items     *repository.Collection[model.ReceivedItem]
	persons   *repository.Collection[model.DeliveryPerson]
	visits    *repository.Collection[model.DeliveryVisit]
	companies *repository.Collection[model.Company]
	materials *repository.Collection[model.BorrowedMaterial]
	visitors  *repository.Collection[model.Visitor]
}

// newCollections は11コレクション分のアクセサを生成する。
func newCollections(store kvstore.Store, lat kvstore.Simulator, sess repository.SessionSource, obs repository.OpObserver) *collections {
	return &collections{
		packages:  repository.NewCollection[model.Package](store, model.CollectionPackage, lat, sess, obs),
		incidents: repository.NewCollection[model.Incident](store, model.CollectionIncident, lat, sess, obs),
		employees: repository.NewCollection[model.Employee](store, model.CollectionEmployee, lat, sess, obs),
		records:   repository.NewCollection[model.TimeRecord](store, model.CollectionTimeRecord, lat, sess, obs),
		residents: repository.NewCollection[model.Resident](store, model.CollectionResident, lat, sess, obs),
		items:     repository.NewCollection[model.ReceivedItem](store, model.CollectionReceivedItem, lat, sess, obs),
		persons:   repository.NewCollection[model.DeliveryPerson](store, model.CollectionDeliveryPerson, lat, sess, obs),
		visits:    repository.NewCollection[model.DeliveryVisit](store, model.CollectionDeliveryVisit, lat, sess, obs),
		companies: repository.NewCollection[model.Company](store, model.CollectionCompany, lat, sess, obs),
		materials: repository.NewCollection[model.BorrowedMaterial](store, model.CollectionBorrowedMaterial, lat, sess, obs),
		visitors:  repository.NewCollection[model.Visitor](store, model.CollectionVisitor, lat, sess, obs),
	}
}

// runServe はAPIサーバーモードで起動する。
// ファイルストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ストアを開く
	store, err := kvstore.NewFileStore(cfg.DataPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	slog.Info("file store opened", slog.String("path", cfg.DataPath))

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. コレクションとキャッシュの初期化
	lat := kvstore.None()
	if cfg.StoreLatency > 0 {
		lat = kvstore.Fixed(cfg.StoreLatency)
	}

	sessions := session.NewService(store, lat)
	cols := newCollections(store, lat, sessions, collector)

	packagesCache := query.NewCache(cols.packages, cfg.ListCacheTTL, collector)
	incidentsCache := query.NewCache(cols.incidents, cfg.ListCacheTTL, collector)
	employeesCache := query.NewCache(cols.employees, cfg.ListCacheTTL, collector)
	recordsCache := query.NewCache(cols.records, cfg.ListCacheTTL, collector)
	residentsCache := query.NewCache(cols.residents, cfg.ListCacheTTL, collector)
	itemsCache := query.NewCache(cols.items, cfg.ListCacheTTL, collector)
	personsCache := query.NewCache(cols.persons, cfg.ListCacheTTL, collector)
	visitsCache := query.NewCache(cols.visits, cfg.ListCacheTTL, collector)
	companiesCache := query.NewCache(cols.companies, cfg.ListCacheTTL, collector)
	materialsCache := query.NewCache(cols.materials, cfg.ListCacheTTL, collector)
	visitorsCache := query.NewCache(cols.visitors, cfg.ListCacheTTL, collector)

	// 4. 勤務シェルの初期化
	sanitizer := security.NewTextSanitizer()
	shell := shift.NewShell(sessions, cols.employees, cols.incidents, sanitizer, cfg.ShiftPassphrase)

	shellCtx, stopShell := context.WithCancel(context.Background())
	defer stopShell()
	go shell.Run(shellCtx)

	// 5. ハンドラーの構築
	resources := handler.NewResources(handler.ResourceDeps{
		Packages:        cols.packages,
		PackagesList:    packagesCache,
		Incidents:       cols.incidents,
		IncidentsList:   incidentsCache,
		Employees:       cols.employees,
		EmployeesList:   employeesCache,
		TimeRecords:     cols.records,
		TimeRecordsList: recordsCache,
		Residents:       cols.residents,
		ResidentsList:   residentsCache,
		ReceivedItems:   cols.items,
		ReceivedList:    itemsCache,
		DeliveryPersons: cols.persons,
		PersonsList:     personsCache,
		DeliveryVisits:  cols.visits,
		VisitsList:      visitsCache,
		Companies:       cols.companies,
		CompaniesList:   companiesCache,
		Materials:       cols.materials,
		MaterialsList:   materialsCache,
		Visitors:        cols.visitors,
		VisitorsList:    visitorsCache,
	})

	dashboard := handler.NewDashboardHandler(
		packagesCache, visitorsCache, materialsCache,
		itemsCache, incidentsCache, employeesCache,
	)
	notifyHandler := handler.NewNotifyHandler(packagesCache, itemsCache, residentsCache)
	exportHandler := handler.NewExportHandler(recordsCache)
	uploadHandler := handler.NewUploadHandler(upload.NewMemoryStore(cfg.UploadMaxSize), cfg.UploadMaxSize)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.ConfigFromPerMinute(cfg.RateLimitGeneral, cfg.RateLimitMutation),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		StatusObserver:    collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		SessionFinder:     sessions,

		Shell:    shell,
		Identity: sessions,

		Resources:      resources,
		IncidentsCache: incidentsCache,

		Dashboard: dashboard,
		Notify:    notifyHandler,
		Export:    exportHandler,
		Uploads:   uploadHandler,

		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")
	stopShell()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
