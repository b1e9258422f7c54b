package model

// 11コレクションのエンティティ定義。
// 参照は全てソフトな外部キー（IDフィールドのみ、整合性強制なし）で、
// 参照先が削除されてもレコードは残る。欠損は表示時に「不明」として扱う。

// Shift は勤務帯を表す。
type Shift string

const (
	ShiftDay   Shift = "day"
	ShiftNight Shift = "night"
)

// PackageStatus は荷物の受け渡し状態を表す。
type PackageStatus string

const (
	// PackageAwaitingPickup は受付済みで引き取り待ちの状態。
	PackageAwaitingPickup PackageStatus = "awaiting_pickup"
	// PackagePickedUp は引き取り済みの状態。
	PackagePickedUp PackageStatus = "picked_up"
	// PackageReturned は差出人へ返送された状態。
	PackageReturned PackageStatus = "returned"
)

// Package は受付で預かった荷物を表す。
type Package struct {
	Meta
	ResidentID   string        `json:"resident_id,omitempty"`
	Unit         string        `json:"unit"`
	Block        string        `json:"block,omitempty"`
	Kind         string        `json:"kind,omitempty"`
	Sender       string        `json:"sender,omitempty"`
	CompanyID    string        `json:"company_id,omitempty"`
	CompanyName  string        `json:"company_name,omitempty"`
	Description  string        `json:"description,omitempty"`
	TrackingCode string        `json:"tracking_code,omitempty"`
	PickupCode   string        `json:"pickup_code,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	Shift        Shift         `json:"shift,omitempty"`
	Status       PackageStatus `json:"status"`
	ReceivedAt   string        `json:"received_at,omitempty"`
	PickedUpAt   string        `json:"picked_up_at,omitempty"`
	PickedUpBy   string        `json:"picked_up_by,omitempty"`
}

// Incident は勤務中の出来事・引き継ぎ記録を表す。
// シフト引き継ぎ確定時にはメモ本文と送り出し・受け入れ双方の身元を持つ。
type Incident struct {
	Meta
	OutgoingID   string `json:"outgoing_id,omitempty"`
	OutgoingName string `json:"outgoing_name,omitempty"`
	IncomingID   string `json:"incoming_id,omitempty"`
	IncomingName string `json:"incoming_name,omitempty"`
	Report       string `json:"report"`
}

// EmployeeStatus は従業員の在籍状態を表す。
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// Employee は受付スタッフを表す。
type Employee struct {
	Meta
	FullName  string         `json:"full_name"`
	Document  string         `json:"document,omitempty"`
	Role      string         `json:"role,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	Email     string         `json:"email,omitempty"`
	Shift     Shift          `json:"shift,omitempty"`
	StartTime string         `json:"start_time,omitempty"`
	EndTime   string         `json:"end_time,omitempty"`
	Status    EmployeeStatus `json:"status"`
	HiredAt   string         `json:"hired_at,omitempty"`
	PhotoURL  string         `json:"photo_url,omitempty"`
	Notes     string         `json:"notes,omitempty"`
}

// TimeRecordKind は勤怠記録の種別を表す。
type TimeRecordKind string

const (
	TimeRecordNormal   TimeRecordKind = "normal"
	TimeRecordOvertime TimeRecordKind = "overtime"
	TimeRecordAbsence  TimeRecordKind = "absence"
	TimeRecordDayOff   TimeRecordKind = "day_off"
)

// TimeRecord は勤怠の1レコードを表す。
// ClockIn / ClockOut は "HH:MM" 形式の文字列。
type TimeRecord struct {
	Meta
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name,omitempty"`
	Date         string         `json:"date"`
	Shift        Shift          `json:"shift,omitempty"`
	ClockIn      string         `json:"clock_in,omitempty"`
	ClockOut     string         `json:"clock_out,omitempty"`
	Kind         TimeRecordKind `json:"kind"`
	Notes        string         `json:"notes,omitempty"`
}

// ResidentStatus は住民の居住状態を表す。
type ResidentStatus string

const (
	ResidentActive   ResidentStatus = "active"
	ResidentInactive ResidentStatus = "inactive"
)

// Resident は居住者を表す。
type Resident struct {
	Meta
	FullName string         `json:"full_name"`
	Unit     string         `json:"unit"`
	Block    string         `json:"block,omitempty"`
	Phone    string         `json:"phone,omitempty"`
	Email    string         `json:"email,omitempty"`
	Document string         `json:"document,omitempty"`
	Status   ResidentStatus `json:"status"`
	Kind     string         `json:"kind,omitempty"`
	Notes    string         `json:"notes,omitempty"`
}

// ReceivedItemStatus は預かり品の状態を表す。
type ReceivedItemStatus string

const (
	ReceivedItemAwaitingPickup ReceivedItemStatus = "awaiting_pickup"
	ReceivedItemPickedUp       ReceivedItemStatus = "picked_up"
)

// ReceivedItem は荷物以外の預かり品（鍵・書類等）を表す。
// Direction は受け渡しの向き（外部→住民、住民→外部）。
type ReceivedItem struct {
	Meta
	Direction       string             `json:"direction"`
	ResidentID      string             `json:"resident_id,omitempty"`
	Unit            string             `json:"unit,omitempty"`
	Block           string             `json:"block,omitempty"`
	OutsideName     string             `json:"outside_name,omitempty"`
	OutsidePhone    string             `json:"outside_phone,omitempty"`
	ItemDescription string             `json:"item_description"`
	Quantity        int                `json:"quantity,omitempty"`
	Shift           Shift              `json:"shift,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	Status          ReceivedItemStatus `json:"status"`
	PickedUpAt      string             `json:"picked_up_at,omitempty"`
	PickedUpBy      string             `json:"picked_up_by,omitempty"`
	PickupDocument  string             `json:"pickup_document,omitempty"`
}

// DeliveryPerson は出入りする配達員を表す。
type DeliveryPerson struct {
	Meta
	FullName string `json:"full_name"`
	Company  string `json:"company,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Document string `json:"document,omitempty"`
	Status   string `json:"status"`
	Notes    string `json:"notes,omitempty"`
}

// DeliveryVisit は配達員の来訪1回分を表す。
type DeliveryVisit struct {
	Meta
	DeliveryPersonID   string `json:"delivery_person_id"`
	DeliveryPersonName string `json:"delivery_person_name,omitempty"`
	CompanyID          string `json:"company_id,omitempty"`
	CompanyName        string `json:"company_name,omitempty"`
	PackageCount       int    `json:"package_count"`
	Shift              Shift  `json:"shift,omitempty"`
	Notes              string `json:"notes,omitempty"`
}

// CompanyStatus は取引先の利用状態を表す。
type CompanyStatus string

const (
	CompanyActive   CompanyStatus = "active"
	CompanyInactive CompanyStatus = "inactive"
)

// Company は配送会社・業者を表す。
type Company struct {
	Meta
	Name   string        `json:"name"`
	Kind   string        `json:"kind,omitempty"`
	Phone  string        `json:"phone,omitempty"`
	Notes  string        `json:"notes,omitempty"`
	Status CompanyStatus `json:"status"`
}

// BorrowedMaterialStatus は貸出物の状態を表す。
type BorrowedMaterialStatus string

const (
	MaterialBorrowed BorrowedMaterialStatus = "borrowed"
	MaterialReturned BorrowedMaterialStatus = "returned"
)

// BorrowedMaterial は受付からの貸出物（台車・工具等）を表す。
type BorrowedMaterial struct {
	Meta
	Material        string                 `json:"material"`
	BorrowerKind    string                 `json:"borrower_kind"`
	ResidentID      string                 `json:"resident_id,omitempty"`
	ResidentName    string                 `json:"resident_name,omitempty"`
	Unit            string                 `json:"unit,omitempty"`
	Block           string                 `json:"block,omitempty"`
	OutsideName     string                 `json:"outside_name,omitempty"`
	OutsideDocument string                 `json:"outside_document,omitempty"`
	Phone           string                 `json:"phone,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	Status          BorrowedMaterialStatus `json:"status"`
	ReturnedAt      string                 `json:"returned_at,omitempty"`
}

// VisitorStatus は来訪者の在館状態を表す。
type VisitorStatus string

const (
	VisitorOnSite VisitorStatus = "on_site"
	VisitorLeft   VisitorStatus = "left"
)

// Visitor は来訪者を表す。
type Visitor struct {
	Meta
	Name         string        `json:"name"`
	Document     string        `json:"document,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	ResidentID   string        `json:"resident_id,omitempty"`
	ResidentName string        `json:"resident_name,omitempty"`
	Unit         string        `json:"unit,omitempty"`
	Block        string        `json:"block,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	Status       VisitorStatus `json:"status"`
	LeftAt       string        `json:"left_at,omitempty"`
}

// コレクション名。ストレージキーの名前空間に使用する。
const (
	CollectionPackage          = "Package"
	CollectionIncident         = "Incident"
	CollectionEmployee         = "Employee"
	CollectionTimeRecord       = "TimeRecord"
	CollectionResident         = "Resident"
	CollectionReceivedItem     = "ReceivedItem"
	CollectionDeliveryPerson   = "DeliveryPerson"
	CollectionDeliveryVisit    = "DeliveryVisit"
	CollectionCompany          = "Company"
	CollectionBorrowedMaterial = "BorrowedMaterial"
	CollectionVisitor          = "Visitor"
)
