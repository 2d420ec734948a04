package domain

// Session is the result of a successful authentication. It binds a principal
// to the tenant that actually owns it. Sessions are handed to the caller and
// never persisted by this core.
type Session struct {
	PrincipalID string
	Role        Role
	TenantID    string
}
