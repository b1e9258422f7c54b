package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/gatehouse/internal/model"
)

// ドメイン操作は固定パッチによる部分更新として実装する。
// 任意フィールドのPATCHと違い、状態遷移のタイムスタンプと担当者を
// サーバー側で強制的に刻む。

// nowStamp は操作時刻のタイムスタンプ（差し替え可能、テスト用）。
var nowStamp = model.NowStamp

// pickupRequest は引き取り操作のリクエストボディ。
type pickupRequest struct {
	PickedUpBy     string `json:"picked_up_by"`
	PickupDocument string `json:"pickup_document,omitempty"`
}

// PickUpPackage は荷物を引き取り済みにする。
// POST /api/packages/{id}/pickup
func (rs *Resources) PickUpPackage(w http.ResponseWriter, r *http.Request) {
	var req pickupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}
	if strings.TrimSpace(req.PickedUpBy) == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("引き取り者名（picked_up_by）は必須です"))
		return
	}

	rs.Packages.applyAction(w, r, map[string]any{
		"status":       string(model.PackagePickedUp),
		"picked_up_at": nowStamp(),
		"picked_up_by": req.PickedUpBy,
	})
}

// ReturnPackage は荷物を差出人へ返送済みにする。
// POST /api/packages/{id}/return
func (rs *Resources) ReturnPackage(w http.ResponseWriter, r *http.Request) {
	rs.Packages.applyAction(w, r, map[string]any{
		"status": string(model.PackageReturned),
	})
}

// PickUpReceivedItem は預かり品を引き渡し済みにする。
// 引き取り者の本人確認書類を控えとして残す。
// POST /api/received-items/{id}/pickup
func (rs *Resources) PickUpReceivedItem(w http.ResponseWriter, r *http.Request) {
	var req pickupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}
	if strings.TrimSpace(req.PickedUpBy) == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("引き取り者名（picked_up_by）は必須です"))
		return
	}

	rs.ReceivedItems.applyAction(w, r, map[string]any{
		"status":          string(model.ReceivedItemPickedUp),
		"picked_up_at":    nowStamp(),
		"picked_up_by":    req.PickedUpBy,
		"pickup_document": req.PickupDocument,
	})
}

// ReturnMaterial は貸出物を返却済みにする。
// POST /api/borrowed-materials/{id}/return
func (rs *Resources) ReturnMaterial(w http.ResponseWriter, r *http.Request) {
	rs.Materials.applyAction(w, r, map[string]any{
		"status":      string(model.MaterialReturned),
		"returned_at": nowStamp(),
	})
}

// CheckOutVisitor は来訪者を退館済みにする。
// POST /api/visitors/{id}/checkout
func (rs *Resources) CheckOutVisitor(w http.ResponseWriter, r *http.Request) {
	rs.Visitors.applyAction(w, r, map[string]any{
		"status":  string(model.VisitorLeft),
		"left_at": nowStamp(),
	})
}
