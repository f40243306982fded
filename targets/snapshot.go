package targets

import "strings"

// GuildSnapshot is a read-only view of a guild's role catalogue and
// membership, taken at a point in time. Resolution and materialization
// work off the snapshot so that a slow or failing gateway never blocks
// classification; staleness is the caller's policy.
type GuildSnapshot struct {
	Roles   []RoleInfo
	Members []MemberInfo
}

// RoleInfo is one entry of the role catalogue.
type RoleInfo struct {
	ID   string
	Name string
}

// MemberInfo is one guild member with the roles they hold.
type MemberInfo struct {
	ID    string
	Bot   bool
	Roles []string
}

// RoleIDByName looks a role up by case-insensitive name.
func (s *GuildSnapshot) RoleIDByName(name string) (string, bool) {
	for _, role := range s.Roles {
		if strings.EqualFold(role.Name, name) {
			return role.ID, true
		}
	}
	return "", false
}
