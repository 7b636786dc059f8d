package models

// Role is the single role tag carried by every user. The three roles are
// mutually exclusive; all permission logic derives from these predicates.
type Role string

const (
	RoleAccountManager Role = "Account Manager"
	RoleTeamLead       Role = "Team Lead"
	RoleTeamMember     Role = "Team Member"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAccountManager, RoleTeamLead, RoleTeamMember:
		return true
	}
	return false
}

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	Organization string `gorm:"index;not null" json:"organization"`
	Role         Role   `gorm:"not null" json:"role"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	// Set for users provisioned through Google sign-in.
	GoogleSubject string `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAccountManager() bool {
	return u.Role == RoleAccountManager
}

func (u *User) IsTeamLead() bool {
	return u.Role == RoleTeamLead
}

func (u *User) IsTeamMember() bool {
	return u.Role == RoleTeamMember
}
