package identity

type CreateAccountRequest struct {
	Email    string `json:"email" validate:"required,email,max=200"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required,oneof=user manager admin"`
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user manager admin"`
}

type AssignManagerRequest struct {
	// ManagerID nil clears the assignment.
	ManagerID *int64 `json:"manager_id" validate:"omitempty,gt=0"`
}
