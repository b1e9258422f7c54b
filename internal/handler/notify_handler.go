package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/gatehouse/internal/model"
	"github.com/hitoshi/gatehouse/internal/notify"
)

// NotifyHandler は荷物・預かり品の到着通知リンクを組み立てるハンドラー。
//
// サーバーは通知を送信しない。本文と外部メッセージングへのディープ
// リンクを返すだけで、リンクを開くかどうかは受付担当者に委ねられる。
type NotifyHandler struct {
	packages  Lister[model.Package]
	items     Lister[model.ReceivedItem]
	residents Lister[model.Resident]
}

// NewNotifyHandler はNotifyHandlerを生成する。
func NewNotifyHandler(packages Lister[model.Package], items Lister[model.ReceivedItem], residents Lister[model.Resident]) *NotifyHandler {
	return &NotifyHandler{
		packages:  packages,
		items:     items,
		residents: residents,
	}
}

// notifyResponse は通知リンクのレスポンス。
type notifyResponse struct {
	Message string `json:"message"`
	Link    string `json:"link"`
}

// PackageLink は荷物到着通知のリンクを返す。
// 通知先は荷物に紐づく住民の電話番号。
// GET /api/packages/{id}/notify
func (h *NotifyHandler) PackageLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	pkg, err := h.findPackage(r, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	phone, err := h.residentPhone(r, pkg.ResidentID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	message := notify.PackageMessage(*pkg)
	link, err := notify.MessageLink(phone, message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notifyResponse{Message: message, Link: link})
}

// ItemLink は預かり品到着通知のリンクを返す。
// 外部の預け主の電話番号があればそちらを優先し、無ければ住民の番号を使う。
// GET /api/received-items/{id}/notify
func (h *NotifyHandler) ItemLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.findItem(r, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	phone := item.OutsidePhone
	if notify.DigitsOnly(phone) == "" {
		phone, err = h.residentPhone(r, item.ResidentID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
	}

	message := notify.ItemMessage(*item)
	link, err := notify.MessageLink(phone, message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notifyResponse{Message: message, Link: link})
}

func (h *NotifyHandler) findPackage(r *http.Request, id string) (*model.Package, error) {
	list, err := h.packages.List(r.Context(), "", 0)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, model.NewRecordNotFoundError(model.CollectionPackage, id)
}

func (h *NotifyHandler) findItem(r *http.Request, id string) (*model.ReceivedItem, error) {
	list, err := h.items.List(r.Context(), "", 0)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, model.NewRecordNotFoundError(model.CollectionReceivedItem, id)
}

// residentPhone は住民IDから電話番号を引く。
// 住民未指定・参照切れ・番号未登録はいずれもPHONE_MISSINGに落とす。
func (h *NotifyHandler) residentPhone(r *http.Request, residentID string) (string, error) {
	if residentID == "" {
		return "", model.NewPhoneMissingError()
	}
	list, err := h.residents.List(r.Context(), "", 0)
	if err != nil {
		return "", err
	}
	for i := range list {
		if list[i].ID == residentID {
			if notify.DigitsOnly(list[i].Phone) == "" {
				return "", model.NewPhoneMissingError()
			}
			return list[i].Phone, nil
		}
	}
	return "", model.NewPhoneMissingError()
}
