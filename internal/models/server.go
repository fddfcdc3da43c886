package models

import "time"

type Server struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id,string"`
	IconHash  *string   `json:"icon_hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
