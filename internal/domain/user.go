package domain

// User is the resident record as this subsystem sees it: a notification
// address plus the display fields visitors are annotated with.
type User struct {
	ID          int64  `json:"id"`
	CommunityID string `json:"community_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	UnitNumber  string `json:"unit_number"`
	BlockName   string `json:"block_name"`

	// Expo push token; nil means notifications are a silent no-op.
	PushToken *string `json:"-"`
}
