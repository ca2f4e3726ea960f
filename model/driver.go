package model

import "time"

// Branch is the operating-region grouping drivers belong to. It is an
// access-control boundary for the surrounding application, not an
// input to matching.
type Branch string

const (
	BranchMidwest   Branch = "midwest"
	BranchSouth     Branch = "south"
	BranchMountain  Branch = "mountain"
	BranchWestCoast Branch = "westcoast"
)

func (b Branch) Valid() bool {
	switch b {
	case BranchMidwest, BranchSouth, BranchMountain, BranchWestCoast:
		return true
	}
	return false
}

// Driver is referenced by both transactions and fuel logs. Drivers are
// never deleted, only deactivated.
type Driver struct {
	ID           int64     `json:"-"`
	DriverID     string    `json:"driver_id"`
	Name         string    `json:"name"`
	Alias        string    `json:"alias,omitempty"`
	Branch       Branch    `json:"branch"`
	CardLastFour string    `json:"card_last_four,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
