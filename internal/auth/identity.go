package auth

// TokenIdentity is the identity carried by a validated token. It satisfies
// entries.Identity.
type TokenIdentity struct {
	userID int64
	email  string
	grants map[string]bool
}

// NewIdentity builds an identity from validated token claims.
func NewIdentity(claims *TokenClaims) *TokenIdentity {
	grants := make(map[string]bool, len(claims.Permissions))
	for _, p := range claims.Permissions {
		grants[p] = true
	}
	return &TokenIdentity{
		userID: claims.UserID,
		email:  claims.Email,
		grants: grants,
	}
}

// ID returns the numeric user identifier.
func (i *TokenIdentity) ID() int64 { return i.userID }

// Email returns the user's email address.
func (i *TokenIdentity) Email() string { return i.email }

// Can reports whether the identity holds the given permission key. The
// wildcard grant "*" covers every permission.
func (i *TokenIdentity) Can(permission string) bool {
	return i.grants["*"] || i.grants[permission]
}
