package domain

type AccountKind string

const (
	AccountKindUser  AccountKind = "user"
	AccountKindAgent AccountKind = "agent"
)

// Account identifies the caller at the authentication boundary. Users and
// agents live in separate tables; Account is the one shape both reduce to.
type Account struct {
	Kind   AccountKind `json:"kind"`
	ID     int64       `json:"id"`
	Email  string      `json:"email"`
	Role   Role        `json:"role"`
	Status string      `json:"status"`
}

func (a Account) IsSuperAdmin() bool {
	return a.Kind == AccountKindUser && a.Role == RoleSuperAdmin
}

func (a Account) IsAgent() bool {
	return a.Kind == AccountKindAgent
}

func (a Account) IsUser() bool {
	return a.Kind == AccountKindUser
}

// Principal is anything that can log in.
type Principal interface {
	Account() Account
	HashedPassword() string
	EligibleToLogin() error
}
