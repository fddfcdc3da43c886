package database

import (
	"context"

	"github.com/mvasilev/concord/internal/models"
)

// Repository interfaces consumed by services and handlers. All Get* methods
// return (nil, nil) when the record does not exist.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type ServerRepository interface {
	Create(ctx context.Context, server *models.Server) error
	GetByID(ctx context.Context, id int64) (*models.Server, error)
	GetByMember(ctx context.Context, userID int64) ([]models.Server, error)
	Update(ctx context.Context, server *models.Server) error
	Delete(ctx context.Context, id int64) error
}

type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id int64) (*models.Channel, error)
	GetByServerID(ctx context.Context, serverID int64) ([]models.Channel, error)
	Update(ctx context.Context, channel *models.Channel) error
	Delete(ctx context.Context, id int64) error
}

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Member, error)
	GetByServerID(ctx context.Context, serverID int64) ([]models.Member, error)
	ListUserIDs(ctx context.Context, serverID int64) ([]int64, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, serverID, userID int64) error
	AddRole(ctx context.Context, serverID, userID, roleID int64) error
	RemoveRole(ctx context.Context, serverID, userID, roleID int64) error
}

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id int64) (*models.Role, error)
	GetByServerID(ctx context.Context, serverID int64) ([]models.Role, error)
	GetByMember(ctx context.Context, serverID, userID int64) ([]models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id int64) error
}

type ChannelOverrideRepository interface {
	Set(ctx context.Context, override *models.ChannelOverride) error
	GetByChannel(ctx context.Context, channelID int64) ([]models.ChannelOverride, error)
	DeleteForRole(ctx context.Context, channelID, roleID int64) error
	DeleteForUser(ctx context.Context, channelID, userID int64) error
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	GetByChannel(ctx context.Context, channelID int64, before int64, limit int) ([]models.MessageWithAuthor, error)
	GetByConversation(ctx context.Context, conversationID int64, before int64, limit int) ([]models.MessageWithAuthor, error)
	Update(ctx context.Context, message *models.Message) error
	Delete(ctx context.Context, id int64) error
}

type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id int64) (*models.Conversation, error)
	GetByParticipants(ctx context.Context, userA, userB int64) (*models.Conversation, error)
	GetByUser(ctx context.Context, userID int64) ([]models.Conversation, error)
}

type NotificationSettingsRepository interface {
	// Get returns the user's settings, or defaults when no row exists yet.
	Get(ctx context.Context, userID int64) (*models.NotificationSettings, error)
	Upsert(ctx context.Context, settings *models.NotificationSettings) error
}
