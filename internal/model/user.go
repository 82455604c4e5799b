package model

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

const (
	AuthPurposeSignup = "signup"
	AuthPurposeLogin  = "login"
)

type SignupStartRequest struct {
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

type LoginStartRequest struct {
	Email string `json:"email"`
}

type AuthVerifyRequest struct {
	SessionId string `json:"sessionId"`
	Code      string `json:"code"`
}

type AuthStartResponse struct {
	SessionId     uuid.UUID `json:"sessionId"`
	CodeExpiresAt int64     `json:"codeExpiresAt"`
}

type VerificationCodeTemplateData struct {
	Code      string
	ExpiresIn int64
}

type FullnameUpdateRequest struct {
	Fullname string `json:"fullname"`
}

type TimezoneUpdateRequest struct {
	Timezone string `json:"timezone"`
}

type SkinTypeUpdateRequest struct {
	SkinType string `json:"skinType"`
}

type UserResponse struct {
	Id             string    `json:"id"`
	Email          string    `json:"email"`
	Fullname       string    `json:"fullname"`
	Timezone       string    `json:"timezone"`
	SkinType       *string   `json:"skinType"`
	AvatarImage    *string   `json:"avatarImage"`
	CreateDatetime time.Time `json:"createDatetime"`
	UpdateDatetime time.Time `json:"updateDatetime"`
}

type User struct {
	Id             uuid.UUID
	Email          string
	Fullname       string
	Timezone       string
	SkinType       *string
	AvatarImageId  *uuid.UUID
	Settings       sonic.NoCopyRawMessage
	CreateDatetime time.Time
	UpdateDatetime time.Time
	CreateUserId   uuid.UUID
	UpdateUserId   uuid.UUID
}
