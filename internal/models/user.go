package models

const (
	RoleSuperuser   = "superuser"
	RoleMaintenance = "maintenance"
)

type Role struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Tool struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Route       string `json:"route"`
	Icon        string `json:"icon"`
	IsActive    bool   `json:"is_active"`
}

type User struct {
	ID        int    `json:"id"`
	FullName  string `json:"full_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
	Roles     []Role `json:"roles"`
	Tools     []Tool `json:"tools"`
}

// HasRole reports role membership by name.
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// UserInput is the admin create payload.
type UserInput struct {
	FullName  string `json:"full_name" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	RoleIDs   []int  `json:"role_ids"`
	ToolIDs   []int  `json:"tool_ids"`
	SendEmail bool   `json:"send_email"`
}

// UserUpdate is the admin update payload; nil fields are left untouched.
type UserUpdate struct {
	FullName *string `json:"full_name,omitempty"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	RoleIDs  []int   `json:"role_ids,omitempty"`
	ToolIDs  []int   `json:"tool_ids,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
