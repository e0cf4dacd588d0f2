// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type Response struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

func newResponse(u *User, roles []Role) *Response {
	return &Response{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Status:    u.Status,
		Roles:     roleNames(roles),
		CreatedAt: u.CreatedAt,
	}
}
