package models

// User is a registered account. Password holds an opaque credential and is
// never serialized to clients.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	FullName string `json:"fullName,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

// RegisterInput is the payload accepted at registration.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"max=100"`
}

// LoginInput is the payload accepted at login.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Principal is the authenticated caller of a mutating operation.
type Principal struct {
	UserID  int
	IsAdmin bool
}

// CanModify reports whether the principal may change an entity owned by authorID.
func (p *Principal) CanModify(authorID *int) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin {
		return true
	}
	return authorID != nil && *authorID == p.UserID
}
