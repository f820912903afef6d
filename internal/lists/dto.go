package lists

type CreateListRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	// UserID targets another account's data; blank means the actor's own.
	UserID string `json:"user_id" validate:"omitempty,max=20"`
}

type UpdateListRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
}
