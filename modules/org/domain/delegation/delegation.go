package delegation

import "time"

// Delegation lends the delegator's visibility to the delegate while active.
type Delegation struct {
	ID              int64
	DelegatorCarnet string
	DelegateCarnet  string
	Reason          string
	Active          bool
	EndDate         *time.Time
}

func (d Delegation) ActiveAt(t time.Time) bool {
	if !d.Active {
		return false
	}
	return d.EndDate == nil || !d.EndDate.Before(t)
}
