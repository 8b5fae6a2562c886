package models

import (
	"time"
)

type UserReq struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshReq struct {
	Refresh string `json:"refresh" validate:"required"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type PasswordResetReq struct {
	Email string `json:"email" validate:"required,email"`
}

type NewPasswordReq struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type UserResp struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

type TokenPairResp struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type AccessResp struct {
	Access string `json:"access"`
}

type PasswordResetResp struct {
	Detail   string `json:"detail"`
	ResetURL string `json:"reset_url"`
}

type LinkReq struct {
	LinkURL string `json:"link_url" validate:"required,url,max=255"`
}

type LinkUpdateReq struct {
	LinkURL     string  `json:"link_url" validate:"required,url,max=255"`
	Title       *string `json:"title" validate:"omitempty,max=2048"`
	Description *string `json:"description"`
	Image       *string `json:"image" validate:"omitempty,max=2048"`
	LinkType    string  `json:"link_type" validate:"omitempty,oneof=website book article music video"`
}

type LinkResp struct {
	ID          uint64    `json:"id"`
	LinkURL     *string   `json:"link_url"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
	LinkType    LinkType  `json:"link_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CollectionReq struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

type CollectionResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LinkCollectionReq struct {
	LinkID       uint64 `json:"link_id" validate:"required"`
	CollectionID uint64 `json:"collection_id" validate:"required"`
}

type LinkCollectionResp struct {
	ID           uint64 `json:"id"`
	LinkID       uint64 `json:"link_id"`
	CollectionID uint64 `json:"collection_id"`
}

// ListResp is the envelope of every paginated listing.
type ListResp struct {
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	Count   int64       `json:"count"`
	Results interface{} `json:"results"`
}

type ErrorResp struct {
	Detail     string `json:"detail"`
	Code       string `json:"code"`
	StatusCode int    `json:"status_code"`
}
