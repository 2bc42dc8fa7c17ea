package domain

import "time"

type AgentStatus string

const (
	AgentStatusPending        AgentStatus = "pending"
	AgentStatusInVerification AgentStatus = "in_verification"
	AgentStatusApproved       AgentStatus = "approved"
	AgentStatusRejected       AgentStatus = "rejected"
	AgentStatusSuspended      AgentStatus = "suspended"
)

// CanUploadDocuments reports whether an agent in status s may submit
// onboarding documents.
func (s AgentStatus) CanUploadDocuments() bool {
	return s == AgentStatusPending || s == AgentStatusInVerification
}

// Agent is a car-rental agency. It is stored apart from User.
type Agent struct {
	ID            int64       `json:"id"`
	Email         string      `json:"email"`
	PasswordHash  string      `json:"-"`
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	AgencyName    string      `json:"agency_name"`
	AgencyAddress string      `json:"agency_address"`
	City          string      `json:"city"`
	Phone         string      `json:"phone"`
	AccountStatus AgentStatus `json:"account_status"`
	ApprovalDate  *time.Time  `json:"approval_date,omitempty"`
	Role          Role        `json:"role"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (a *Agent) Account() Account {
	return Account{Kind: AccountKindAgent, ID: a.ID, Email: a.Email, Role: RoleAgent, Status: string(a.AccountStatus)}
}

func (a *Agent) HashedPassword() string {
	return a.PasswordHash
}

// EligibleToLogin admits approved agents and agents still in verification so
// the latter can finish uploading documents.
func (a *Agent) EligibleToLogin() error {
	switch a.AccountStatus {
	case AgentStatusApproved, AgentStatusInVerification:
		return nil
	default:
		return Unauthorized("agent account is not approved yet")
	}
}

type AgentProfileUpdate struct {
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	AgencyName    *string `json:"agency_name,omitempty"`
	AgencyAddress *string `json:"agency_address,omitempty"`
	City          *string `json:"city,omitempty"`
	Phone         *string `json:"phone,omitempty"`
}

func (p AgentProfileUpdate) Apply(a *Agent) {
	if p.FirstName != nil {
		a.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		a.LastName = *p.LastName
	}
	if p.AgencyName != nil {
		a.AgencyName = *p.AgencyName
	}
	if p.AgencyAddress != nil {
		a.AgencyAddress = *p.AgencyAddress
	}
	if p.City != nil {
		a.City = *p.City
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
}

type AgentFilter struct {
	Status AgentStatus
	City   string
}
