package domain

import "time"

type Role string

const (
	RoleUser       Role = "user"
	RoleAgent      Role = "agent"
	RoleSuperAdmin Role = "superadmin"
)

// User is a customer account. Superadmins are users with RoleSuperAdmin.
type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Phone             string    `json:"phone"`
	Address           string    `json:"address"`
	City              string    `json:"city"`
	Role              Role      `json:"role"`
	IsActive          bool      `json:"is_active"`
	EmailVerified     bool      `json:"email_verified"`
	VerificationToken string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) Account() Account {
	status := "active"
	if !u.IsActive {
		status = "inactive"
	}
	return Account{Kind: AccountKindUser, ID: u.ID, Email: u.Email, Role: u.Role, Status: status}
}

func (u *User) HashedPassword() string {
	return u.PasswordHash
}

func (u *User) EligibleToLogin() error {
	if !u.IsActive {
		return Unauthorized("account is inactive")
	}
	if !u.EmailVerified {
		return Unauthorized("email address is not verified")
	}
	return nil
}

// UserProfileUpdate carries the editable profile fields. Nil means unchanged.
type UserProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	City      *string `json:"city,omitempty"`
}

func (p UserProfileUpdate) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.City != nil {
		u.City = *p.City
	}
}
