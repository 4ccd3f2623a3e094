package membership

import "time"

const (
	RoleMember   = "Member"
	RoleLeader   = "Leader"
	RoleManager  = "Manager"
	RoleDirector = "Director"
)

// LeadershipRoles are the roles that grant management authority over a
// node's subtree.
var LeadershipRoles = []string{RoleLeader, RoleManager, RoleDirector}

// Membership ties a user to an org node with a role for a period. Closed
// memberships keep their row with EndDate set; they are never deleted.
type Membership struct {
	ID        int64
	UserID    int64
	NodeID    int64
	Role      string
	StartDate time.Time
	EndDate   *time.Time
}

func (m Membership) ActiveAt(t time.Time) bool {
	if m.StartDate.After(t) {
		return false
	}
	return m.EndDate == nil || !m.EndDate.Before(t)
}

func (m Membership) IsLeadership() bool {
	switch m.Role {
	case RoleLeader, RoleManager, RoleDirector:
		return true
	}
	return false
}
