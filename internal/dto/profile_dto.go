package dto

type ProfileResponse struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Phone     string `json:"phone"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// UpdateProfileRequest fields left out of the body are not changed.
type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,max=128"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Username        *string `json:"username" validate:"omitempty,max=64"`
	Phone           *string `json:"phone" validate:"omitempty,max=32"`
	FullName        *string `json:"full_name" validate:"omitempty,max=128"`
	CurrentPassword string  `json:"current_password"`
}
