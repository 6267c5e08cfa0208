package models

import "time"

// DeviceClassAdmin keys admin-console sessions separately from other client
// types of the same user.
const DeviceClassAdmin = "admin-console"

// SessionContext is the enriched identity attached to a successful login. It
// is assembled once per login and handed off to the session store; it is never
// written back to the account record.
type SessionContext struct {
	UserID          int64      `json:"user_id"`
	Username        string     `json:"username"`
	Nickname        string     `json:"nickname"`
	Avatar          string     `json:"avatar"`
	Mobile          string     `json:"mobile"`
	Email           string     `json:"email"`
	Sex             int        `json:"sex"`
	Admin           bool       `json:"admin"`
	Roles           []string   `json:"roles"`
	LoginIP         string     `json:"login_ip"`
	LoginRegion     string     `json:"login_region"`
	LoginTime       time.Time  `json:"login_time"`
	PrevLoginIP     string     `json:"prev_login_ip,omitempty"`
	PrevLoginRegion string     `json:"prev_login_region,omitempty"`
	PrevLoginTime   *time.Time `json:"prev_login_time,omitempty"`
	DeptID          *int64     `json:"dept_id,omitempty"`
	DeptName        string     `json:"dept_name,omitempty"`
	DeptNames       []string   `json:"dept_names,omitempty"`
	OS              string     `json:"os"`
	Browser         string     `json:"browser"`
	CreatedAt       time.Time  `json:"created_at"`
}
