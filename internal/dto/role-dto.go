package dto

type AssignRoleRequest struct {
	Role string `json:"role"`
}

type CreateRoleRequest struct {
	Name string `json:"name"`
}

type CreatePermissionRequest struct {
	Name string `json:"name"`
}

type GrantPermissionRequest struct {
	Permission string `json:"permission"`
}
