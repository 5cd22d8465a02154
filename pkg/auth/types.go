package auth

import "time"

// Role is a user's authorization tier. Roles are flat: holding SuperAdmin does not
// imply Admin, every route lists the roles it accepts.
type Role string

const (
	RoleSuperAdmin Role = "Super Admin"
	RoleAdmin      Role = "Admin"
	RoleUser       Role = "User"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Rank orders roles for assignment checks; unknown roles rank lowest
func (r Role) Rank() int {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	}
	return 0
}

// CanAssign reports whether a caller holding r may grant role
func (r Role) CanAssign(role Role) bool {
	return r.Rank() > 0 && role.Rank() <= r.Rank()
}

// Status is the account state checked at login
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "InActive"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// User is the stored account, including the password hash.
// It never leaves the service layer; callers get a PublicUser.
type User struct {
	NIP          string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the sanitized user record returned to callers and embedded in tokens
type PublicUser struct {
	NIP       string    `json:"nip"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"nohp"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Public strips the password hash
func (u *User) Public() PublicUser {
	return PublicUser{
		NIP:       u.NIP,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AuthContext holds the verified caller of a request
type AuthContext struct {
	Claims *Claims
}

// NIP returns the caller's identifier
func (ac *AuthContext) NIP() string {
	if ac == nil || ac.Claims == nil {
		return ""
	}
	return ac.Claims.Subject
}

// Role returns the caller's role at token issuance
func (ac *AuthContext) Role() Role {
	if ac == nil || ac.Claims == nil {
		return ""
	}
	return ac.Claims.Role
}

// HasRole reports whether the caller's role is one of roles
func (ac *AuthContext) HasRole(roles ...Role) bool {
	role := ac.Role()
	if role == "" {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// LoginOutcome distinguishes the non-error results of a login attempt
type LoginOutcome int

const (
	// LoginSucceeded carries a user and token
	LoginSucceeded LoginOutcome = iota
	// LoginInactive is the soft refusal for an inactive account; no token is issued
	LoginInactive
)

func (o LoginOutcome) String() string {
	if o == LoginInactive {
		return "inactive"
	}
	return "success"
}

// LoginResult is returned by Service.Login when no error occurred
type LoginResult struct {
	Outcome LoginOutcome
	User    PublicUser
	Token   string
}

// AuthResult is returned by signup: the created user and its first token
type AuthResult struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}
