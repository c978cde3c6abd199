package lessons

type CreateLessonRequest struct {
	CourseID    int64   `json:"course" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description" validate:"required"`
	Preview     *string `json:"preview,omitempty" validate:"omitempty,url,max=255"`
	VideoURL    string  `json:"video_url" validate:"required,youtube_url,max=255"`
}

type UpdateLessonRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
	Preview     *string `json:"preview,omitempty" validate:"omitempty,url,max=255"`
	VideoURL    *string `json:"video_url,omitempty" validate:"omitempty,youtube_url,max=255"`
}
