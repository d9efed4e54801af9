package domain

import "time"

type VisitorType string

const (
	VisitorGuest    VisitorType = "guest"
	VisitorDelivery VisitorType = "delivery"
	VisitorCabAuto  VisitorType = "cab_auto"
)

func ParseVisitorType(s string) (VisitorType, bool) {
	switch VisitorType(s) {
	case VisitorGuest, VisitorDelivery, VisitorCabAuto:
		return VisitorType(s), true
	default:
		return "", false
	}
}

// AllVisitorTypes returns every declared type, in stats-breakdown order.
func AllVisitorTypes() []VisitorType {
	return []VisitorType{VisitorGuest, VisitorDelivery, VisitorCabAuto}
}

// VisitorStatus is derived from the two timestamps and never stored.
type VisitorStatus string

const (
	VisitorPending    VisitorStatus = "pending"
	VisitorCheckedIn  VisitorStatus = "checked_in"
	VisitorCheckedOut VisitorStatus = "checked_out"
)

func ParseVisitorStatus(s string) (VisitorStatus, bool) {
	switch VisitorStatus(s) {
	case VisitorPending, VisitorCheckedIn, VisitorCheckedOut:
		return VisitorStatus(s), true
	default:
		return "", false
	}
}

// DisplayPlaceholder renders in place of host fields we could not resolve.
const DisplayPlaceholder = "—"

type Visitor struct {
	ID          string      `json:"id"`
	CommunityID string      `json:"community_id"`
	HostID      int64       `json:"host_id"`
	Name        string      `json:"name"`
	Contact     string      `json:"contact"`
	VehicleNo   string      `json:"vehicle_no,omitempty"`
	Type        VisitorType `json:"visitor_type"`
	Notes       string      `json:"notes,omitempty"`
	VisitDate   time.Time   `json:"visit_date"`
	CheckInAt   *time.Time  `json:"check_in_at,omitempty"`
	CheckOutAt  *time.Time  `json:"check_out_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Display fields resolved from the host relationship
	HostName  string `json:"host_name"`
	HostUnit  string `json:"host_unit"`
	HostBlock string `json:"host_block"`
}

// Status derives the lifecycle state from timestamp presence. The invariant
// (CheckOutAt set implies CheckInAt set) makes the order of checks safe.
func (v *Visitor) Status() VisitorStatus {
	switch {
	case v.CheckOutAt != nil:
		return VisitorCheckedOut
	case v.CheckInAt != nil:
		return VisitorCheckedIn
	default:
		return VisitorPending
	}
}

type CreateVisitorReq struct {
	Name        string    `json:"name"`
	Contact     string    `json:"contact"`
	VisitDate   time.Time `json:"visit_date"`
	VisitorType string    `json:"visitor_type"`
	VehicleNo   string    `json:"vehicle_no,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// VisitorFilter narrows listing; nil fields are ignored. Date bounds are
// inclusive on the visit date.
type VisitorFilter struct {
	From   *time.Time
	To     *time.Time
	Status *VisitorStatus
	Type   *VisitorType
}

type VisitorDTO struct {
	Visitor
	Status VisitorStatus `json:"status"`
}

func NewVisitorDTO(v Visitor) VisitorDTO {
	if v.HostName == "" {
		v.HostName = DisplayPlaceholder
	}
	if v.HostUnit == "" {
		v.HostUnit = DisplayPlaceholder
	}
	if v.HostBlock == "" {
		v.HostBlock = DisplayPlaceholder
	}
	return VisitorDTO{Visitor: v, Status: v.Status()}
}

// VisitorStats is the per-day, per-community breakdown. TypeBreakdown always
// contains every declared VisitorType, zero-filled.
type VisitorStats struct {
	Pending       int                 `json:"pending"`
	CheckedIn     int                 `json:"checkedIn"`
	CheckedOut    int                 `json:"checkedOut"`
	Total         int                 `json:"total"`
	TypeBreakdown map[VisitorType]int `json:"typeBreakdown"`
}
