package handler

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hitoshi/gatehouse/internal/model"
)

// Resources は全エンティティのリソースハンドラーをまとめた構造体。
type Resources struct {
	Packages        *Resource[model.Package]
	Incidents       *Resource[model.Incident]
	Employees       *Resource[model.Employee]
	TimeRecords     *Resource[model.TimeRecord]
	Residents       *Resource[model.Resident]
	ReceivedItems   *Resource[model.ReceivedItem]
	DeliveryPersons *Resource[model.DeliveryPerson]
	DeliveryVisits  *Resource[model.DeliveryVisit]
	Companies       *Resource[model.Company]
	Materials       *Resource[model.BorrowedMaterial]
	Visitors        *Resource[model.Visitor]
}

// ResourceDeps はNewResourcesに渡すコレクションとキャッシュの組。
type ResourceDeps struct {
	Packages        RepositoryInterface[model.Package]
	PackagesList    ListSource[model.Package]
	Incidents       RepositoryInterface[model.Incident]
	IncidentsList   ListSource[model.Incident]
	Employees       RepositoryInterface[model.Employee]
	EmployeesList   ListSource[model.Employee]
	TimeRecords     RepositoryInterface[model.TimeRecord]
	TimeRecordsList ListSource[model.TimeRecord]
	Residents       RepositoryInterface[model.Resident]
	ResidentsList   ListSource[model.Resident]
	ReceivedItems   RepositoryInterface[model.ReceivedItem]
	ReceivedList    ListSource[model.ReceivedItem]
	DeliveryPersons RepositoryInterface[model.DeliveryPerson]
	PersonsList     ListSource[model.DeliveryPerson]
	DeliveryVisits  RepositoryInterface[model.DeliveryVisit]
	VisitsList      ListSource[model.DeliveryVisit]
	Companies       RepositoryInterface[model.Company]
	CompaniesList   ListSource[model.Company]
	Materials       RepositoryInterface[model.BorrowedMaterial]
	MaterialsList   ListSource[model.BorrowedMaterial]
	Visitors        RepositoryInterface[model.Visitor]
	VisitorsList    ListSource[model.Visitor]
}

// NewResources は各エンティティの検索対象・フィルタ・作成時検査を
// 結線したResourcesを生成する。
func NewResources(deps ResourceDeps) *Resources {
	return &Resources{
		Packages: NewResource(deps.Packages, deps.PackagesList, ResourceOptions[model.Package]{
			SearchFields: []string{"unit", "block", "sender", "description", "tracking_code", "pickup_code", "company_name"},
			FilterFields: []string{"status", "shift"},
			Validate: func(p model.Package) *model.APIError {
				if strings.TrimSpace(p.Unit) == "" {
					return model.NewValidationError("部屋番号（unit）は必須です")
				}
				return nil
			},
			Prepare: preparePackage,
		}),
		Incidents: NewResource(deps.Incidents, deps.IncidentsList, ResourceOptions[model.Incident]{
			SearchFields: []string{"outgoing_name", "incoming_name", "report"},
			Validate: func(i model.Incident) *model.APIError {
				if strings.TrimSpace(i.Report) == "" {
					return model.NewValidationError("記録本文（report）は必須です")
				}
				return nil
			},
		}),
		Employees: NewResource(deps.Employees, deps.EmployeesList, ResourceOptions[model.Employee]{
			SearchFields: []string{"full_name", "role", "document", "phone"},
			FilterFields: []string{"status", "shift"},
			Validate: func(e model.Employee) *model.APIError {
				if strings.TrimSpace(e.FullName) == "" {
					return model.NewValidationError("氏名（full_name）は必須です")
				}
				return nil
			},
			Prepare: func(e *model.Employee) {
				if e.Status == "" {
					e.Status = model.EmployeeActive
				}
			},
		}),
		TimeRecords: NewResource(deps.TimeRecords, deps.TimeRecordsList, ResourceOptions[model.TimeRecord]{
			SearchFields: []string{"employee_name", "date"},
			FilterFields: []string{"kind", "shift", "employee_id"},
			DefaultSort:  "-date",
			Validate: func(t model.TimeRecord) *model.APIError {
				if strings.TrimSpace(t.EmployeeID) == "" {
					return model.NewValidationError("従業員（employee_id）は必須です")
				}
				if strings.TrimSpace(t.Date) == "" {
					return model.NewValidationError("日付（date）は必須です")
				}
				return nil
			},
			Prepare: func(t *model.TimeRecord) {
				if t.Kind == "" {
					t.Kind = model.TimeRecordNormal
				}
			},
		}),
		Residents: NewResource(deps.Residents, deps.ResidentsList, ResourceOptions[model.Resident]{
			SearchFields: []string{"full_name", "unit", "block", "document", "phone"},
			FilterFields: []string{"status"},
			Validate: func(r model.Resident) *model.APIError {
				if strings.TrimSpace(r.FullName) == "" {
					return model.NewValidationError("氏名（full_name）は必須です")
				}
				if strings.TrimSpace(r.Unit) == "" {
					return model.NewValidationError("部屋番号（unit）は必須です")
				}
				return nil
			},
			Prepare: func(r *model.Resident) {
				if r.Status == "" {
					r.Status = model.ResidentActive
				}
			},
		}),
		ReceivedItems: NewResource(deps.ReceivedItems, deps.ReceivedList, ResourceOptions[model.ReceivedItem]{
			SearchFields: []string{"unit", "block", "outside_name", "item_description"},
			FilterFields: []string{"status", "direction"},
			Validate: func(i model.ReceivedItem) *model.APIError {
				if strings.TrimSpace(i.ItemDescription) == "" {
					return model.NewValidationError("品目（item_description）は必須です")
				}
				return nil
			},
			Prepare: func(i *model.ReceivedItem) {
				if i.Status == "" {
					i.Status = model.ReceivedItemAwaitingPickup
				}
				if i.Quantity <= 0 {
					i.Quantity = 1
				}
			},
		}),
		DeliveryPersons: NewResource(deps.DeliveryPersons, deps.PersonsList, ResourceOptions[model.DeliveryPerson]{
			SearchFields: []string{"full_name", "company", "document", "phone"},
			FilterFields: []string{"status"},
			Validate: func(p model.DeliveryPerson) *model.APIError {
				if strings.TrimSpace(p.FullName) == "" {
					return model.NewValidationError("氏名（full_name）は必須です")
				}
				return nil
			},
			Prepare: func(p *model.DeliveryPerson) {
				if p.Status == "" {
					p.Status = "active"
				}
			},
		}),
		DeliveryVisits: NewResource(deps.DeliveryVisits, deps.VisitsList, ResourceOptions[model.DeliveryVisit]{
			SearchFields: []string{"delivery_person_name", "company_name"},
			FilterFields: []string{"shift"},
			Validate: func(v model.DeliveryVisit) *model.APIError {
				if strings.TrimSpace(v.DeliveryPersonID) == "" {
					return model.NewValidationError("配達員（delivery_person_id）は必須です")
				}
				return nil
			},
			Prepare: func(v *model.DeliveryVisit) {
				if v.PackageCount <= 0 {
					v.PackageCount = 1
				}
			},
		}),
		Companies: NewResource(deps.Companies, deps.CompaniesList, ResourceOptions[model.Company]{
			SearchFields: []string{"name", "phone"},
			FilterFields: []string{"status", "kind"},
			Validate: func(c model.Company) *model.APIError {
				if strings.TrimSpace(c.Name) == "" {
					return model.NewValidationError("会社名（name）は必須です")
				}
				return nil
			},
			Prepare: func(c *model.Company) {
				if c.Status == "" {
					c.Status = model.CompanyActive
				}
			},
		}),
		Materials: NewResource(deps.Materials, deps.MaterialsList, ResourceOptions[model.BorrowedMaterial]{
			SearchFields: []string{"material", "unit", "block", "resident_name", "outside_name", "outside_document"},
			FilterFields: []string{"status", "borrower_kind"},
			Validate: func(m model.BorrowedMaterial) *model.APIError {
				if strings.TrimSpace(m.Material) == "" {
					return model.NewValidationError("貸出物（material）は必須です")
				}
				return nil
			},
			Prepare: func(m *model.BorrowedMaterial) {
				if m.Status == "" {
					m.Status = model.MaterialBorrowed
				}
			},
		}),
		Visitors: NewResource(deps.Visitors, deps.VisitorsList, ResourceOptions[model.Visitor]{
			SearchFields: []string{"name", "document", "resident_name", "unit", "block"},
			FilterFields: []string{"status"},
			Validate: func(v model.Visitor) *model.APIError {
				if strings.TrimSpace(v.Name) == "" {
					return model.NewValidationError("来訪者名（name）は必須です")
				}
				return nil
			},
			Prepare: func(v *model.Visitor) {
				if v.Status == "" {
					v.Status = model.VisitorOnSite
				}
			},
		}),
	}
}

// preparePackage は荷物受付時の既定値を補う。
// 引き取りコードは受付時に払い出し、以後変化しない。
func preparePackage(p *model.Package) {
	if p.Status == "" {
		p.Status = model.PackageAwaitingPickup
	}
	if p.PickupCode == "" {
		p.PickupCode = newPickupCode()
	}
	if p.ReceivedAt == "" {
		p.ReceivedAt = model.NowStamp()
	}
}

// newPickupCode は6文字の引き取りコードを生成する。
// 住民が口頭で伝えやすいよう大文字英数字のみを使う。
func newPickupCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:6]
}
