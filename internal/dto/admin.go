package dto

import (
	"time"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
)

// AdminUserEntry is one account in the administration listing.
type AdminUserEntry struct {
	ID        string      `json:"id"`
	FullName  *string     `json:"full_name"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// AdminUserList groups profiles by role. The grouping is a view concern;
// storage keeps a flat table ordered by creation time.
type AdminUserList struct {
	Students []AdminUserEntry `json:"students"`
	Teachers []AdminUserEntry `json:"teachers"`
	Admins   []AdminUserEntry `json:"admins"`
}

// UpdateRoleRequest reassigns a user's role.
type UpdateRoleRequest struct {
	UserID string      `json:"user_id" validate:"required"`
	Role   models.Role `json:"role" validate:"required,oneof=student teacher admin"`
}
