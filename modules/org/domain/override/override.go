package override

import "time"

const (
	AccessAllow = "ALLOW"
	AccessDeny  = "DENY"

	ScopeSubtree  = "Subtree"
	ScopeNodeOnly = "NodeOnly"

	TargetPerson = "Person"
	TargetNode   = "Node"
)

// Override is a manually configured visibility exception, independent of the
// hierarchy. The receiving side is carnet-keyed; the target is either a
// single person (carnet) or an org node, with node targets scoped to the
// whole subtree or the node alone.
type Override struct {
	ID             int64
	GranterCarnet  string
	ReceiverCarnet string
	TargetType     string
	TargetCarnet   string
	TargetNodeID   int64
	AccessType     string
	Scope          string
	Reason         string
	Active         bool
	EndDate        *time.Time
}

func (o Override) ActiveAt(t time.Time) bool {
	if !o.Active {
		return false
	}
	return o.EndDate == nil || !o.EndDate.Before(t)
}
