package domain

import (
	"testing"
	"time"
)

func TestVisitorStatusDerivation(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name     string
		checkIn  *time.Time
		checkOut *time.Time
		want     VisitorStatus
	}{
		{"no timestamps", nil, nil, VisitorPending},
		{"checked in only", &now, nil, VisitorCheckedIn},
		{"both timestamps", &now, &now, VisitorCheckedOut},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Visitor{CheckInAt: tc.checkIn, CheckOutAt: tc.checkOut}
			if got := v.Status(); got != tc.want {
				t.Errorf("Status() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewVisitorDTOFillsPlaceholders(t *testing.T) {
	dto := NewVisitorDTO(Visitor{ID: "vis-1"})

	if dto.HostName != DisplayPlaceholder || dto.HostUnit != DisplayPlaceholder || dto.HostBlock != DisplayPlaceholder {
		t.Errorf("host fields = %q/%q/%q, want placeholders", dto.HostName, dto.HostUnit, dto.HostBlock)
	}
	if dto.Status != VisitorPending {
		t.Errorf("status = %q, want pending", dto.Status)
	}
}

func TestNewVisitorDTOKeepsResolvedHostFields(t *testing.T) {
	dto := NewVisitorDTO(Visitor{HostName: "Asha", HostUnit: "B-204", HostBlock: "B"})

	if dto.HostName != "Asha" || dto.HostUnit != "B-204" || dto.HostBlock != "B" {
		t.Errorf("host fields = %q/%q/%q, want originals kept", dto.HostName, dto.HostUnit, dto.HostBlock)
	}
}

func TestParseVisitorTypeRejectsUnknown(t *testing.T) {
	if _, ok := ParseVisitorType("drone"); ok {
		t.Error("accepted unknown visitor type")
	}
	for _, visitorType := range AllVisitorTypes() {
		if _, ok := ParseVisitorType(string(visitorType)); !ok {
			t.Errorf("rejected declared type %q", visitorType)
		}
	}
}
