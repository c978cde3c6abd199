package courses

type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description" validate:"required"`
	Preview     *string `json:"preview,omitempty" validate:"omitempty,url,max=255"`
	Price       float64 `json:"price" validate:"gte=0"`
}

type UpdateCourseRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string  `json:"description,omitempty"`
	Preview     *string  `json:"preview,omitempty" validate:"omitempty,url,max=255"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}
