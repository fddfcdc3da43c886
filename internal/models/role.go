package models

// Role is a named permission bundle scoped to one server. Higher Position
// means more senior. The flag field json tags double as the wire-level
// permission key names, so a role document reads as a map of key → granted.
type Role struct {
	ID       int64  `json:"id,string"`
	ServerID int64  `json:"server_id,string"`
	Name     string `json:"name"`
	Color    int    `json:"color"`
	Position int    `json:"position"`

	ReadMessages    bool `json:"readMessages"`
	SendMessages    bool `json:"sendMessages"`
	ManageMessages  bool `json:"manageMessages"`
	ManageChannels  bool `json:"manageChannels"`
	ManageRoles     bool `json:"manageRoles"`
	ManageServer    bool `json:"manageServer"`
	MentionEveryone bool `json:"mentionEveryone"`
	Administrator   bool `json:"administrator"`

	Mentionable bool `json:"mentionable"`
	IsDefault   bool `json:"is_default"`
}
