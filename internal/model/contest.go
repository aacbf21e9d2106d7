package model

import "time"

// Author is the owner reference carried by a contest record.
type Author struct {
	Name string `json:"authorName" yaml:"authorName"`
}

// Contest is an approved contest as listed by the judge API.
// Records are read-only snapshots; StartTime < EndTime is the creator's responsibility.
type Contest struct {
	ID        string    `json:"acid" yaml:"acid"`
	Title     string    `json:"title" yaml:"title"`
	StartTime time.Time `json:"startTime" yaml:"startTime"`
	EndTime   time.Time `json:"endTime" yaml:"endTime"`
	Author    Author    `json:"author" yaml:"author"`
}

// Identity is the current user's name and role. An empty username means not logged in.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoggedIn reports whether the identity carries a username.
func (i Identity) LoggedIn() bool {
	return i.Username != ""
}

// AdminRegistration is the body of POST /api/admin/add.
type AdminRegistration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	PinCode  string `json:"pinCode"`
}

// AddAdminResult is the reply of POST /api/admin/add.
type AddAdminResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
