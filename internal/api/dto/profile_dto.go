package dto

// CreateProfileDTO is the body of POST /profiles.
type CreateProfileDTO struct {
	Username   string  `json:"username" binding:"required" validate:"required"`
	Platform   string  `json:"platform"`
	TrackingID *string `json:"tracking_id"`
	UserID     *uint64 `json:"user_id"`
}
