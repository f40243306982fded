package bot

import (
	"fmt"

	"discord-role-scheduler/targets"

	"github.com/bwmarrin/discordgo"
)

const memberPageSize = 1000

// sessionAdapter implements the role mutation, notification and snapshot
// capabilities over a discordgo session.
type sessionAdapter struct {
	session *discordgo.Session
}

func (a *sessionAdapter) GrantRole(guildID, userID, roleID, reason string) error {
	if reason != "" {
		return a.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithAuditLogReason(reason))
	}
	return a.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (a *sessionAdapter) RevokeRole(guildID, userID, roleID, reason string) error {
	if reason != "" {
		return a.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithAuditLogReason(reason))
	}
	return a.session.GuildMemberRoleRemove(guildID, userID, roleID)
}

// SendDirectNotification sends a direct message to a user.
func (a *sessionAdapter) SendDirectNotification(userID, message string) error {
	channel, err := a.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("error creating private channel with user %s: %w", userID, err)
	}
	if _, err := a.session.ChannelMessageSend(channel.ID, message); err != nil {
		return fmt.Errorf("error sending private message to user %s: %w", userID, err)
	}
	return nil
}

// GetGuildSnapshot fetches the guild's role catalogue and full member
// list. Member listing pages through the REST API in chunks.
func (a *sessionAdapter) GetGuildSnapshot(guildID string) (*targets.GuildSnapshot, error) {
	roles, err := a.session.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles for guild %s: %w", guildID, err)
	}

	snapshot := &targets.GuildSnapshot{}
	for _, role := range roles {
		snapshot.Roles = append(snapshot.Roles, targets.RoleInfo{ID: role.ID, Name: role.Name})
	}

	after := ""
	for {
		members, err := a.session.GuildMembers(guildID, after, memberPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch members for guild %s: %w", guildID, err)
		}
		if len(members) == 0 {
			break
		}
		for _, member := range members {
			snapshot.Members = append(snapshot.Members, targets.MemberInfo{
				ID:    member.User.ID,
				Bot:   member.User.Bot,
				Roles: member.Roles,
			})
		}
		if len(members) < memberPageSize {
			break
		}
		after = members[len(members)-1].User.ID
	}

	return snapshot, nil
}
