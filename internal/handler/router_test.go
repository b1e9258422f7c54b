package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hitoshi/gatehouse/internal/kvstore"
	"github.com/hitoshi/gatehouse/internal/middleware"
	"github.com/hitoshi/gatehouse/internal/model"
	"github.com/hitoshi/gatehouse/internal/query"
	"github.com/hitoshi/gatehouse/internal/repository"
	"github.com/hitoshi/gatehouse/internal/security"
	"github.com/hitoshi/gatehouse/internal/session"
	"github.com/hitoshi/gatehouse/internal/shift"
	"github.com/hitoshi/gatehouse/internal/upload"
)

const testPassphrase = "aikotoba"

// newTestRouter は実ストア・実シェルで全結線したルーターを組み立てる。
// メトリクスと疑似レイテンシは無効。
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := kvstore.NewFileStore(filepath.Join(t.TempDir(), "gatehouse.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	lat := kvstore.None()
	sessions := session.NewService(store, lat)

	packages := repository.NewCollection[model.Package](store, model.CollectionPackage, lat, sessions, nil)
	incidents := repository.NewCollection[model.Incident](store, model.CollectionIncident, lat, sessions, nil)
	employees := repository.NewCollection[model.Employee](store, model.CollectionEmployee, lat, sessions, nil)
	timeRecords := repository.NewCollection[model.TimeRecord](store, model.CollectionTimeRecord, lat, sessions, nil)
	residents := repository.NewCollection[model.Resident](store, model.CollectionResident, lat, sessions, nil)
	receivedItems := repository.NewCollection[model.ReceivedItem](store, model.CollectionReceivedItem, lat, sessions, nil)
	deliveryPersons := repository.NewCollection[model.DeliveryPerson](store, model.CollectionDeliveryPerson, lat, sessions, nil)
	deliveryVisits := repository.NewCollection[model.DeliveryVisit](store, model.CollectionDeliveryVisit, lat, sessions, nil)
	companies := repository.NewCollection[model.Company](store, model.CollectionCompany, lat, sessions, nil)
	materials := repository.NewCollection[model.BorrowedMaterial](store, model.CollectionBorrowedMaterial, lat, sessions, nil)
	visitors := repository.NewCollection[model.Visitor](store, model.CollectionVisitor, lat, sessions, nil)

	packagesCache := query.NewCache[model.Package](packages, 0, nil)
	incidentsCache := query.NewCache[model.Incident](incidents, 0, nil)
	employeesCache := query.NewCache[model.Employee](employees, 0, nil)
	timeRecordsCache := query.NewCache[model.TimeRecord](timeRecords, 0, nil)
	residentsCache := query.NewCache[model.Resident](residents, 0, nil)
	receivedCache := query.NewCache[model.ReceivedItem](receivedItems, 0, nil)
	personsCache := query.NewCache[model.DeliveryPerson](deliveryPersons, 0, nil)
	visitsCache := query.NewCache[model.DeliveryVisit](deliveryVisits, 0, nil)
	companiesCache := query.NewCache[model.Company](companies, 0, nil)
	materialsCache := query.NewCache[model.BorrowedMaterial](materials, 0, nil)
	visitorsCache := query.NewCache[model.Visitor](visitors, 0, nil)

	shell := shift.NewShell(sessions, employeesCache, incidents, security.NewTextSanitizer(), testPassphrase)

	resources := NewResources(ResourceDeps{
		Packages:        packages,
		PackagesList:    packagesCache,
		Incidents:       incidents,
		IncidentsList:   incidentsCache,
		Employees:       employees,
		EmployeesList:   employeesCache,
		TimeRecords:     timeRecords,
		TimeRecordsList: timeRecordsCache,
		Residents:       residents,
		ResidentsList:   residentsCache,
		ReceivedItems:   receivedItems,
		ReceivedList:    receivedCache,
		DeliveryPersons: deliveryPersons,
		PersonsList:     personsCache,
		DeliveryVisits:  deliveryVisits,
		VisitsList:      visitsCache,
		Companies:       companies,
		CompaniesList:   companiesCache,
		Materials:       materials,
		MaterialsList:   materialsCache,
		Visitors:        visitors,
		VisitorsList:    visitorsCache,
	})

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(limiter.Stop)

	uploads := NewUploadHandler(upload.NewMemoryStore(0), 0)

	return NewRouter(&RouterDeps{
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       limiter,
		SessionFinder:     sessions,
		Shell:             shell,
		Identity:          sessions,
		Resources:         resources,
		IncidentsCache:    incidentsCache,
		Dashboard: NewDashboardHandler(
			packagesCache, visitorsCache, materialsCache,
			receivedCache, incidentsCache, employeesCache,
		),
		Notify:  NewNotifyHandler(packagesCache, receivedCache, residentsCache),
		Export:  NewExportHandler(timeRecordsCache),
		Uploads: uploads,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// startShift は従業員ゼロの初期状態から管理用アクセスで勤務を開始する。
func startShift(t *testing.T, router http.Handler, employeeID string) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/shift/start",
		`{"employee_id":"`+employeeID+`","passphrase":"`+testPassphrase+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("shift start: status = %d: %s", w.Code, w.Body.String())
	}
}

func TestRouter_HealthWithoutSession(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRouter_ProtectedRequiresSession(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/packages", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "SHIFT_NOT_ACTIVE") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRouter_ShiftEndRequiresSession(t *testing.T) {
	router := newTestRouter(t)

	// 勤務していない呼び出しが勤務終了（とメモ帳の破棄）を起こせないこと
	w := doJSON(t, router, http.MethodPost, "/api/shift/end", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "SHIFT_NOT_ACTIVE") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRouter_AdminBootstrapThenEmployeeShift(t *testing.T) {
	router := newTestRouter(t)

	// 在籍者ゼロの初期状態では管理用アクセスで入れる
	startShift(t, router, "admin-temp")

	w := doJSON(t, router, http.MethodPost, "/api/employees", `{"full_name":"田中 太郎","shift":"day"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create employee: status = %d: %s", w.Code, w.Body.String())
	}
	var emp model.Employee
	json.NewDecoder(w.Body).Decode(&emp)
	if emp.ID == "" {
		t.Fatal("employee ID not assigned")
	}
	if emp.Status != model.EmployeeActive {
		t.Errorf("status = %q, want active", emp.Status)
	}
	// 管理用アクセスのセッションから帰属が刻まれること
	if emp.RegisteredBy != "Administrator (temporary)" {
		t.Errorf("registered_by = %q", emp.RegisteredBy)
	}

	if w := doJSON(t, router, http.MethodPost, "/api/shift/end", ""); w.Code != http.StatusNoContent {
		t.Fatalf("shift end: status = %d", w.Code)
	}

	// 在籍者が1人でもいれば管理用アクセスは拒否される
	w = doJSON(t, router, http.MethodPost, "/api/shift/start",
		`{"employee_id":"admin-temp","passphrase":"`+testPassphrase+`"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("admin re-entry: status = %d, want 401", w.Code)
	}

	// 登録済み従業員として勤務開始
	startShift(t, router, emp.ID)

	w = doJSON(t, router, http.MethodGet, "/api/shift/whoami", "")
	if w.Code != http.StatusOK {
		t.Fatalf("whoami: status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "田中 太郎") {
		t.Errorf("whoami body = %s", w.Body.String())
	}
}

func TestRouter_PackageLifecycle(t *testing.T) {
	router := newTestRouter(t)
	startShift(t, router, "admin-temp")

	w := doJSON(t, router, http.MethodPost, "/api/packages",
		`{"unit":"301","sender":"ヤマト運輸","description":"段ボール1箱"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d: %s", w.Code, w.Body.String())
	}
	var pkg model.Package
	json.NewDecoder(w.Body).Decode(&pkg)

	if pkg.Status != model.PackageAwaitingPickup {
		t.Errorf("status = %q, want awaiting_pickup", pkg.Status)
	}
	if len(pkg.PickupCode) != 6 {
		t.Errorf("pickup_code = %q, want 6 chars", pkg.PickupCode)
	}
	if pkg.ReceivedAt == "" {
		t.Error("received_at not stamped")
	}

	// 引き取り待ちで絞り込めること
	w = doJSON(t, router, http.MethodGet, "/api/packages?status=awaiting_pickup", "")
	var awaiting []model.Package
	json.NewDecoder(w.Body).Decode(&awaiting)
	if len(awaiting) != 1 {
		t.Fatalf("awaiting = %d, want 1", len(awaiting))
	}

	// 引き取り
	w = doJSON(t, router, http.MethodPost, "/api/packages/"+pkg.ID+"/pickup", `{"picked_up_by":"山田 太郎"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("pickup: status = %d: %s", w.Code, w.Body.String())
	}

	// キャッシュが破棄され、絞り込み結果が即座に変わること
	w = doJSON(t, router, http.MethodGet, "/api/packages?status=awaiting_pickup", "")
	awaiting = nil
	json.NewDecoder(w.Body).Decode(&awaiting)
	if len(awaiting) != 0 {
		t.Errorf("awaiting after pickup = %d, want 0", len(awaiting))
	}

	w = doJSON(t, router, http.MethodGet, "/api/packages?status=picked_up", "")
	var picked []model.Package
	json.NewDecoder(w.Body).Decode(&picked)
	if len(picked) != 1 || picked[0].PickedUpBy != "山田 太郎" {
		t.Errorf("picked = %+v", picked)
	}
}

func TestRouter_HandoverCreatesIncident(t *testing.T) {
	router := newTestRouter(t)
	startShift(t, router, "admin-temp")

	// 引き継ぎに使う従業員を2人登録
	var ids []string
	for _, name := range []string{"田中 太郎", "佐藤 花子"} {
		w := doJSON(t, router, http.MethodPost, "/api/employees", `{"full_name":"`+name+`"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("create employee: status = %d", w.Code)
		}
		var emp model.Employee
		json.NewDecoder(w.Body).Decode(&emp)
		ids = append(ids, emp.ID)
	}

	// メモ帳を開いて本文を書き、保存を要求
	if w := doJSON(t, router, http.MethodPost, "/api/notepad/open", ""); w.Code != http.StatusOK {
		t.Fatalf("open: status = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPut, "/api/notepad/text", `{"text":"301号室 鍵預かり中"}`); w.Code != http.StatusOK {
		t.Fatalf("text: status = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/api/handover/request", ""); w.Code != http.StatusOK {
		t.Fatalf("request: status = %d", w.Code)
	}

	w := doJSON(t, router, http.MethodPost, "/api/handover/confirm",
		`{"outgoing_id":"`+ids[0]+`","incoming_id":"`+ids[1]+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("confirm: status = %d: %s", w.Code, w.Body.String())
	}
	var inc model.Incident
	json.NewDecoder(w.Body).Decode(&inc)
	if inc.Report != "301号室 鍵預かり中" {
		t.Errorf("report = %q", inc.Report)
	}
	if inc.OutgoingName != "田中 太郎" || inc.IncomingName != "佐藤 花子" {
		t.Errorf("identities = %q / %q", inc.OutgoingName, inc.IncomingName)
	}

	// Incidentの一覧にも即座に現れること
	w = doJSON(t, router, http.MethodGet, "/api/incidents", "")
	var list []model.Incident
	json.NewDecoder(w.Body).Decode(&list)
	if len(list) != 1 {
		t.Errorf("incidents = %d, want 1", len(list))
	}

	// 確定後、メモ帳は閉じた状態に戻ること
	w = doJSON(t, router, http.MethodGet, "/api/notepad", "")
	var snap shift.Snapshot
	json.NewDecoder(w.Body).Decode(&snap)
	if snap.Notepad != shift.NotepadClosed {
		t.Errorf("notepad = %q, want closed", snap.Notepad)
	}
	if snap.Text != "" {
		t.Errorf("text = %q, want empty", snap.Text)
	}
}

func TestRouter_DashboardReflectsState(t *testing.T) {
	router := newTestRouter(t)
	startShift(t, router, "admin-temp")

	doJSON(t, router, http.MethodPost, "/api/packages", `{"unit":"101"}`)
	doJSON(t, router, http.MethodPost, "/api/visitors", `{"name":"山田 訪","unit":"101"}`)
	doJSON(t, router, http.MethodPost, "/api/borrowed-materials", `{"material":"台車"}`)

	w := doJSON(t, router, http.MethodGet, "/api/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		PackagesAwaiting int `json:"packages_awaiting"`
		VisitorsOnSite   int `json:"visitors_on_site"`
		MaterialsOut     int `json:"materials_out"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.PackagesAwaiting != 1 || resp.VisitorsOnSite != 1 || resp.MaterialsOut != 1 {
		t.Errorf("summary = %+v", resp)
	}
}
