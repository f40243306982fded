package targets

import (
	"regexp"
	"strings"

	"discord-role-scheduler/model"
)

// Resolution is the classified form of a raw target string.
type Resolution struct {
	Kind            model.TargetKind
	ExplicitUserIDs []string
	TargetRoleIDs   []string
}

var (
	reUserMention = regexp.MustCompile(`^<@!?(\d{17,19})>$`)
	reRoleMention = regexp.MustCompile(`^<@&(\d{17,19})>$`)
	reBareUserID  = regexp.MustCompile(`^\d{17,19}$`)
	reSeparators  = regexp.MustCompile(`[\s,;]+`)
)

// Resolve classifies a raw target string against the snapshot's role
// catalogue. The whole string matching "@everyone", "everyone" or "all"
// exactly (after trimming, any case) means everyone; any extra token
// disqualifies that reading and the string is scanned token by token
// instead. Unrecognized tokens and role names missing from the catalogue
// are dropped; a string with no recognized tokens at all classifies as
// an empty user list, never an error.
func Resolve(text string, snapshot *GuildSnapshot) Resolution {
	trimmed := strings.TrimSpace(text)
	switch strings.ToLower(trimmed) {
	case "@everyone", "everyone", "all":
		return Resolution{Kind: model.TargetEveryone}
	}

	var userIDs, roleIDs []string
	seenUsers := make(map[string]bool)
	seenRoles := make(map[string]bool)

	addUser := func(id string) {
		if !seenUsers[id] {
			seenUsers[id] = true
			userIDs = append(userIDs, id)
		}
	}
	addRole := func(id string) {
		if !seenRoles[id] {
			seenRoles[id] = true
			roleIDs = append(roleIDs, id)
		}
	}

	for _, token := range reSeparators.Split(trimmed, -1) {
		if token == "" {
			continue
		}
		if m := reUserMention.FindStringSubmatch(token); m != nil {
			addUser(m[1])
			continue
		}
		if m := reRoleMention.FindStringSubmatch(token); m != nil {
			addRole(m[1])
			continue
		}
		if reBareUserID.MatchString(token) {
			addUser(token)
			continue
		}
		if name, ok := strings.CutPrefix(token, "@"); ok && name != "" {
			if id, found := snapshot.RoleIDByName(name); found {
				addRole(id)
			}
			continue
		}
	}

	kind := model.TargetUsers
	switch {
	case len(roleIDs) > 0 && len(userIDs) > 0:
		kind = model.TargetMixed
	case len(roleIDs) > 0:
		kind = model.TargetRole
	}

	return Resolution{
		Kind:            kind,
		ExplicitUserIDs: userIDs,
		TargetRoleIDs:   roleIDs,
	}
}
