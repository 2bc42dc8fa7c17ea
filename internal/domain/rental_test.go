package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRentalStatus_CanTransitionTo(t *testing.T) {
	all := []RentalStatus{RentalStatusPending, RentalStatusApproved, RentalStatusRejected, RentalStatusCancelled, RentalStatusCompleted}
	allowed := map[RentalStatus]map[RentalStatus]bool{
		RentalStatusPending:  {RentalStatusApproved: true, RentalStatusRejected: true, RentalStatusCancelled: true},
		RentalStatusApproved: {RentalStatusCancelled: true, RentalStatusCompleted: true},
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[from][to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, RentalStatusRejected.IsTerminal())
	assert.True(t, RentalStatusCancelled.IsTerminal())
	assert.True(t, RentalStatusCompleted.IsTerminal())
	assert.False(t, RentalStatusPending.IsTerminal())
	assert.True(t, RentalStatusApproved.IsActive())
	assert.False(t, RentalStatusCompleted.IsActive())
}

func TestDateRange_Overlaps(t *testing.T) {
	existing := DateRange{Start: date(2025, 1, 10), End: date(2025, 1, 15)}

	t.Run("Partial overlap", func(t *testing.T) {
		r := DateRange{Start: date(2025, 1, 14), End: date(2025, 1, 20)}
		assert.True(t, existing.Overlaps(r))
		assert.True(t, r.Overlaps(existing))
		assert.True(t, existing.OverlapsStrict(r))
	})

	t.Run("Touching boundary", func(t *testing.T) {
		r := DateRange{Start: date(2025, 1, 15), End: date(2025, 1, 18)}
		assert.True(t, existing.Overlaps(r))
		assert.False(t, existing.OverlapsStrict(r))
	})

	t.Run("Disjoint", func(t *testing.T) {
		r := DateRange{Start: date(2025, 1, 16), End: date(2025, 1, 18)}
		assert.False(t, existing.Overlaps(r))
		assert.False(t, existing.OverlapsStrict(r))
	})

	t.Run("Contained", func(t *testing.T) {
		r := DateRange{Start: date(2025, 1, 11), End: date(2025, 1, 12)}
		assert.True(t, existing.Overlaps(r))
		assert.True(t, existing.OverlapsStrict(r))
	})
}

func TestAllVerified(t *testing.T) {
	assert.False(t, AllVerified(nil))
	assert.True(t, AllVerified([]AgentDocument{{Status: DocumentStatusVerified}}))
	assert.False(t, AllVerified([]AgentDocument{{Status: DocumentStatusVerified}, {Status: DocumentStatusPending}}))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "250.00", Money(25000).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-1.50", Money(-150).String())
	assert.Equal(t, Money(1999), MoneyFromFloat(19.99))

	var m Money
	assert.NoError(t, m.UnmarshalJSON([]byte(`"120.5"`)))
	assert.Equal(t, Money(12050), m)
	assert.NoError(t, m.UnmarshalJSON([]byte(`45`)))
	assert.Equal(t, Money(4500), m)
	assert.Error(t, m.UnmarshalJSON([]byte(`"abc"`)))
}

func TestPrincipalEligibility(t *testing.T) {
	u := &User{IsActive: true, EmailVerified: false}
	assert.Equal(t, KindUnauthorized, KindOf(u.EligibleToLogin()))
	u.EmailVerified = true
	assert.NoError(t, u.EligibleToLogin())
	u.IsActive = false
	assert.Error(t, u.EligibleToLogin())

	for status, ok := range map[AgentStatus]bool{
		AgentStatusPending:        false,
		AgentStatusInVerification: true,
		AgentStatusApproved:       true,
		AgentStatusRejected:       false,
		AgentStatusSuspended:      false,
	} {
		a := &Agent{AccountStatus: status}
		assert.Equal(t, ok, a.EligibleToLogin() == nil, string(status))
	}

	admin := (&User{ID: 1, Role: RoleSuperAdmin, IsActive: true}).Account()
	assert.True(t, admin.IsSuperAdmin())
	assert.Equal(t, Recipient{ID: 1, Type: RecipientSuperAdmin}, RecipientFor(admin))
}

func TestErrorIs(t *testing.T) {
	wrapped := ErrCarNotFound.Wrap(assert.AnError)
	assert.ErrorIs(t, wrapped, ErrCarNotFound)
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.NotErrorIs(t, wrapped, ErrRentalNotFound)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(assert.AnError))
}
