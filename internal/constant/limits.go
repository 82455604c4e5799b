package constant

import "time"

const (
	// MAX_FILE_SIZE bounds both presign declarations and avatar uploads.
	MAX_FILE_SIZE = 10 * 1024 * 1024

	// DEFAULT_PHOTO_MONTHLY_LIMIT is used when PHOTO_MONTHLY_LIMIT is unset.
	DEFAULT_PHOTO_MONTHLY_LIMIT = 2

	// PRESIGN_EXPIRY is the lifetime of an upload URL and its reservation.
	PRESIGN_EXPIRY = 15 * time.Minute

	DEFAULT_PAGE_LIMIT = 50
	MAX_PAGE_LIMIT     = 100
)
