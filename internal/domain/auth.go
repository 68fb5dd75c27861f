package domain

// User represents the portal identity. Singleton per profile: the local
// backend fabricates a fixed default identity, the hosted record service
// returns the real session user.
type User struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Session reports the authenticated state alongside the resolved identity.
type Session struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// DefaultUser is the fixed identity used when no user record exists.
// There is no credential model behind it; authentication is a persisted flag.
func DefaultUser() User {
	return User{
		Email:    "local-user@example.com",
		FullName: "Local User",
		Role:     "investor",
	}
}
