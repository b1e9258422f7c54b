package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/gatehouse/internal/model"
	"github.com/hitoshi/gatehouse/internal/shift"
)

// ShellInterface はシフトハンドラーが必要とする勤務シェルのインターフェース。
type ShellInterface interface {
	Session(ctx context.Context) (*model.Session, error)
	SignIn(ctx context.Context, employeeID, passphrase string) (*model.Session, error)
	SignOut(ctx context.Context) error
	Notepad() shift.Snapshot
	OpenNotepad() shift.Snapshot
	RaiseOpenNotepad()
	SetText(text string) (shift.Snapshot, error)
	Minimize() (shift.Snapshot, error)
	Maximize() (shift.Snapshot, error)
	Close() (shift.Snapshot, error)
	RequestSave() (shift.Snapshot, error)
	ConfirmHandover(ctx context.Context, outgoingID, incomingID string) (*model.Incident, error)
	CancelHandover() shift.Snapshot
}

// IdentityProvider はレガシー互換のWhoAmI応答の取得元。
type IdentityProvider interface {
	WhoAmI(ctx context.Context) (*model.Identity, error)
}

// Invalidator はミューテーション後に破棄するキャッシュ。
type Invalidator interface {
	Invalidate()
}

// ShiftHandler は勤務開始・終了とメモ帳・引き継ぎのHTTPハンドラー。
type ShiftHandler struct {
	shell     ShellInterface
	identity  IdentityProvider
	incidents Invalidator
}

// NewShiftHandler はShiftHandlerを生成する。
// incidentsは引き継ぎ確定で作られるIncidentの一覧キャッシュ。nil可。
func NewShiftHandler(shell ShellInterface, identity IdentityProvider, incidents Invalidator) *ShiftHandler {
	return &ShiftHandler{
		shell:     shell,
		identity:  identity,
		incidents: incidents,
	}
}

// shiftStatusResponse は勤務状態のレスポンス。
type shiftStatusResponse struct {
	Active  bool           `json:"active"`
	Session *model.Session `json:"session,omitempty"`
}

// startShiftRequest は勤務開始リクエストのボディ。
type startShiftRequest struct {
	EmployeeID string `json:"employee_id"`
	Passphrase string `json:"passphrase"`
}

// setTextRequest はメモ本文差し替えリクエストのボディ。
type setTextRequest struct {
	Text string `json:"text"`
}

// confirmHandoverRequest は引き継ぎ確定リクエストのボディ。
type confirmHandoverRequest struct {
	OutgoingID string `json:"outgoing_id"`
	IncomingID string `json:"incoming_id"`
}

// Status は現在の勤務状態を返す。
// GET /api/shift
func (h *ShiftHandler) Status(w http.ResponseWriter, r *http.Request) {
	sess, err := h.shell.Session(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shiftStatusResponse{
		Active:  sess != nil,
		Session: sess,
	})
}

// Start は勤務を開始する。
// POST /api/shift/start
func (h *ShiftHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}
	if req.EmployeeID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("従業員（employee_id）を選択してください"))
		return
	}

	sess, err := h.shell.SignIn(r.Context(), req.EmployeeID, req.Passphrase)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// End は勤務を終了する。
// POST /api/shift/end
func (h *ShiftHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.shell.SignOut(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WhoAmI は勤務中の操作者のアイデンティティを返す。
// GET /api/shift/whoami
func (h *ShiftHandler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	id, err := h.identity.WhoAmI(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if id == nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewShiftNotActiveError())
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// --- メモ帳 ---

// Notepad は現在のメモ帳スナップショットを返す。
// GET /api/notepad
func (h *ShiftHandler) Notepad(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.shell.Notepad())
}

// OpenNotepad はメモ帳を最大化で開く。
// POST /api/notepad/open
func (h *ShiftHandler) OpenNotepad(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.shell.OpenNotepad())
}

// RaiseNotepad は「メモ帳を開け」の合図をシェルへ送る。
// 即時のスナップショットは返さず、受理のみを応答する。
// POST /api/notepad/raise
func (h *ShiftHandler) RaiseNotepad(w http.ResponseWriter, r *http.Request) {
	h.shell.RaiseOpenNotepad()
	w.WriteHeader(http.StatusAccepted)
}

// SetText はメモ本文を差し替える。
// PUT /api/notepad/text
func (h *ShiftHandler) SetText(w http.ResponseWriter, r *http.Request) {
	var req setTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	snap, err := h.shell.SetText(req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// MinimizeNotepad はメモ帳を最小化する。
// POST /api/notepad/minimize
func (h *ShiftHandler) MinimizeNotepad(w http.ResponseWriter, r *http.Request) {
	snap, err := h.shell.Minimize()
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// MaximizeNotepad は最小化中のメモ帳を最大化に戻す。
// POST /api/notepad/maximize
func (h *ShiftHandler) MaximizeNotepad(w http.ResponseWriter, r *http.Request) {
	snap, err := h.shell.Maximize()
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// CloseNotepad はメモ帳を閉じ、本文を破棄する。
// POST /api/notepad/close
func (h *ShiftHandler) CloseNotepad(w http.ResponseWriter, r *http.Request) {
	snap, err := h.shell.Close()
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// --- 引き継ぎ ---

// RequestHandover はメモ保存を要求し、引き継ぎ確認を開始する。
// POST /api/handover/request
func (h *ShiftHandler) RequestHandover(w http.ResponseWriter, r *http.Request) {
	snap, err := h.shell.RequestSave()
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ConfirmHandover は引き継ぎを確定し、作成されたIncidentを返す。
// POST /api/handover/confirm
func (h *ShiftHandler) ConfirmHandover(w http.ResponseWriter, r *http.Request) {
	var req confirmHandoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	incident, err := h.shell.ConfirmHandover(r.Context(), req.OutgoingID, req.IncomingID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.incidents != nil {
		h.incidents.Invalidate()
	}
	writeJSON(w, http.StatusCreated, incident)
}

// CancelHandover は引き継ぎ確認を取り下げる。
// POST /api/handover/cancel
func (h *ShiftHandler) CancelHandover(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.shell.CancelHandover())
}
