package permissions

import "github.com/mvasilev/concord/internal/models"

// Key identifies one permission in the closed permission set.
type Key string

const (
	ReadMessages    Key = "readMessages"
	SendMessages    Key = "sendMessages"
	ManageMessages  Key = "manageMessages"
	ManageChannels  Key = "manageChannels"
	ManageRoles     Key = "manageRoles"
	ManageServer    Key = "manageServer"
	MentionEveryone Key = "mentionEveryone"
	Administrator   Key = "administrator"
)

// AllKeys lists every recognized permission key.
var AllKeys = []Key{
	ReadMessages,
	SendMessages,
	ManageMessages,
	ManageChannels,
	ManageRoles,
	ManageServer,
	MentionEveryone,
	Administrator,
}

// Valid reports whether k is one of the recognized permission keys.
func (k Key) Valid() bool {
	switch k {
	case ReadMessages, SendMessages, ManageMessages, ManageChannels,
		ManageRoles, ManageServer, MentionEveryone, Administrator:
		return true
	}
	return false
}

// RoleGrants reports whether the role's stored flags grant k. An
// administrator role grants every key regardless of its other flags.
func RoleGrants(role models.Role, k Key) bool {
	if role.Administrator {
		return true
	}
	switch k {
	case ReadMessages:
		return role.ReadMessages
	case SendMessages:
		return role.SendMessages
	case ManageMessages:
		return role.ManageMessages
	case ManageChannels:
		return role.ManageChannels
	case ManageRoles:
		return role.ManageRoles
	case ManageServer:
		return role.ManageServer
	case MentionEveryone:
		return role.MentionEveryone
	case Administrator:
		return role.Administrator
	}
	return false
}
