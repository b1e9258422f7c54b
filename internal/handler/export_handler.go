package handler

import (
	"net/http"
	"strings"

	"github.com/hitoshi/gatehouse/internal/export"
	"github.com/hitoshi/gatehouse/internal/model"
)

// ExportHandler は勤怠一覧の印刷用HTMLエクスポートのハンドラー。
type ExportHandler struct {
	records Lister[model.TimeRecord]
}

// NewExportHandler はExportHandlerを生成する。
func NewExportHandler(records Lister[model.TimeRecord]) *ExportHandler {
	return &ExportHandler{records: records}
}

// Timesheet は勤怠一覧を印刷用HTMLで返す。
// monthは"YYYY-MM"で日付の前方一致、employee_idは従業員での絞り込み。
// どちらも省略可で、省略時は全件。
// GET /api/time-records/export?month=2026-09&employee_id=...
func (h *ExportHandler) Timesheet(w http.ResponseWriter, r *http.Request) {
	qp := r.URL.Query()
	month := qp.Get("month")
	employeeID := qp.Get("employee_id")

	records, err := h.records.List(r.Context(), "date", 0)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	filtered := records[:0:0]
	for _, rec := range records {
		if month != "" && !strings.HasPrefix(rec.Date, month) {
			continue
		}
		if employeeID != "" && rec.EmployeeID != employeeID {
			continue
		}
		filtered = append(filtered, rec)
	}

	title := month
	if title == "" {
		title = "all"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.WriteTimesheet(w, title, filtered); err != nil {
		handleServiceError(w, err)
	}
}
