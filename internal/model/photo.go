package model

import (
	"time"

	"github.com/google/uuid"
)

// PhotoStatusUploaded is the only durable status. Pending/uploading/failed
// states live client-side only; the server tracks an in-flight upload as a
// redis reservation keyed by the photo id issued at presign time.
const PhotoStatusUploaded = "uploaded"

type PhotoPresignRequest struct {
	Mime      string `json:"mime"`
	Extension string `json:"extension"`
	Bytes     int64  `json:"bytes"`
}

type PhotoPresignResponse struct {
	PhotoId   uuid.UUID `json:"photoId"`
	UploadUrl string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresIn int       `json:"expiresIn"`
}

type PhotoConfirmRequest struct {
	PhotoId      string `json:"photoId"`
	Bytes        int64  `json:"bytes"`
	Width        *int   `json:"width"`
	Height       *int   `json:"height"`
	WeekNumber   *int   `json:"weekNumber"`
	OriginalName string `json:"originalName"`
}

type PhotoFeedbackRequest struct {
	Feedback string `json:"feedback"`
}

// PhotoReservation is the transient presign state held in redis until the
// client confirms or the reservation expires.
type PhotoReservation struct {
	UserId    uuid.UUID
	ObjectKey string
	Mime      string
	Bytes     int64
}

type Photo struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Bucket         string
	ObjectKey      string
	Size           int64
	MimeType       string
	Width          *int
	Height         *int
	WeekNumber     *int
	Feedback       *string
	Status         string
	OriginalName   *string
	UploadedAt     time.Time
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

type PhotoResponse struct {
	Id           uuid.UUID `json:"id"`
	Url          string    `json:"url"`
	Size         int64     `json:"bytes"`
	MimeType     string    `json:"mime"`
	Width        *int      `json:"width"`
	Height       *int      `json:"height"`
	WeekNumber   *int      `json:"weekNumber"`
	Feedback     *string   `json:"feedback"`
	Status       string    `json:"status"`
	OriginalName *string   `json:"originalName"`
	Label        string    `json:"label"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

type MonthlyQuotaResponse struct {
	Uploaded  int    `json:"uploaded"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	MonthName string `json:"monthName"`
}
