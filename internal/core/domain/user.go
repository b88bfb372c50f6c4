package domain

import "time"

// Role is the authorization role carried by a user and its access token.
type Role string

const (
	RoleAdmin             Role = "ADMIN"
	RoleAdminPsychologist Role = "ADMIN_PSYCHOLOGIST"
	RolePsychologist      Role = "PSYCHOLOGIST"
	RoleConsultant        Role = "CONSULTANT"
)

// roleGrants lists every role a given role satisfies. Composite roles are a
// single row here.
var roleGrants = map[Role][]Role{
	RoleAdmin:             {RoleAdmin},
	RoleAdminPsychologist: {RoleAdminPsychologist, RoleAdmin, RolePsychologist},
	RolePsychologist:      {RolePsychologist},
	RoleConsultant:        {RoleConsultant},
}

// Has reports whether r satisfies a check for required.
func (r Role) Has(required Role) bool {
	for _, g := range roleGrants[r] {
		if g == required {
			return true
		}
	}
	return false
}

// HasAny reports whether r satisfies at least one of the required roles.
func (r Role) HasAny(required ...Role) bool {
	for _, req := range required {
		if r.Has(req) {
			return true
		}
	}
	return false
}

func (r Role) Valid() bool {
	_, ok := roleGrants[r]
	return ok
}

func (r Role) IsPsychologist() bool { return r.Has(RolePsychologist) }
func (r Role) IsConsultant() bool   { return r.Has(RoleConsultant) }
func (r Role) IsAdmin() bool        { return r.Has(RoleAdmin) }

// User models an authenticated actor in the system.
type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	PasswordHash       string    `json:"-"`
	Role               Role      `json:"role"`
	AvatarURL          string    `json:"avatar_url,omitempty"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UserSummary is the public projection of a user embedded in other resources.
type UserSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Actor identifies the caller of a use-case.
type Actor struct {
	UserID string
	Role   Role
}
