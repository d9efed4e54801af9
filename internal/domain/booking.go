package domain

import "time"

// Booking is a read model over the facility booking tables owned by the CRUD
// side of the platform. The reminder job only ever selects from it.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingPending   BookingStatus = "pending"
	BookingCanceled  BookingStatus = "canceled"
)

type Booking struct {
	ID           int64         `json:"id"`
	CommunityID  string        `json:"community_id"`
	FacilityName string        `json:"facility_name"`
	UserID       int64         `json:"user_id"`
	StartsAt     time.Time     `json:"starts_at"`
	Status       BookingStatus `json:"status"`

	// Push token of the booking owner, resolved via join; nil means no device.
	OwnerPushToken *string `json:"-"`
}
