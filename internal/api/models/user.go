package models

// AppRole is the role claim carried by bearer tokens. User management itself
// lives in the auth service; only the role names are needed here.
type AppRole string

const (
	RoleAdmin  AppRole = "admin"
	RoleUser   AppRole = "user"
	RoleViewer AppRole = "viewer"
)
