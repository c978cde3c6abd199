package users

type UpdateProfileRequest struct {
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	City      *string `json:"city,omitempty" validate:"omitempty,max=128"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=255"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=moderator teacher student"`
}
