package domain

import "time"

type PackageStatus string

const (
	PackagePending PackageStatus = "pending"
	PackagePicked  PackageStatus = "picked"
)

type Package struct {
	ID          int64         `json:"id"`
	CommunityID string        `json:"community_id"`
	UserID      int64         `json:"user_id"`
	Name        string        `json:"name"`
	Image       []byte        `json:"-"`
	Status      PackageStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type CreatePackageReq struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Image  []byte `json:"image,omitempty"`
}
