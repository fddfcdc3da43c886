package models

// ChannelOverride adjusts permissions inside one channel for either a role
// or a single user. Exactly one of RoleID / UserID is set; the service
// layer rejects overrides that target both or neither before they reach
// the resolver. Allow and Deny hold permission key names; a key listed in
// both is treated as denied.
type ChannelOverride struct {
	ChannelID int64    `json:"channel_id,string"`
	RoleID    int64    `json:"role_id,string,omitempty"`
	UserID    int64    `json:"user_id,string,omitempty"`
	Allow     []string `json:"allow"`
	Deny      []string `json:"deny"`
}
