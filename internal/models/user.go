package models

import (
	"time"
)

// Account status values as stored in sys_user.status
const (
	StatusNormal   = 0
	StatusDisabled = 1
	StatusDeleted  = 2
)

// User is the durable account record for an administrative user.
type User struct {
	ID           int64
	Username     string
	Nickname     string
	Avatar       string
	Mobile       string
	Email        string
	Sex          int
	Admin        bool
	PasswordHash string
	Status       int
	DeptID       *int64
	LoginIP      string     // IP of the most recent successful login
	LoginTime    *time.Time // time of the most recent successful login
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role is a named role granted to a user.
type Role struct {
	ID   int64
	Code string
	Name string
}
