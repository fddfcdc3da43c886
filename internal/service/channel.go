package service

import (
	"context"

	"github.com/mvasilev/concord/internal/database"
	"github.com/mvasilev/concord/internal/gateway"
	"github.com/mvasilev/concord/internal/models"
	"github.com/mvasilev/concord/internal/permissions"
	"github.com/mvasilev/concord/internal/snowflake"
)

// ChannelService handles channel business logic.
type ChannelService struct {
	channels  database.ChannelRepository
	members   database.MemberRepository
	overrides database.ChannelOverrideRepository
	snowflake *snowflake.Generator
	gateway   gateway.Dispatcher
	perms     *PermissionChecker
}

// NewChannelService creates a ChannelService.
func NewChannelService(
	channels database.ChannelRepository,
	members database.MemberRepository,
	overrides database.ChannelOverrideRepository,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *ChannelService {
	return &ChannelService{
		channels:  channels,
		members:   members,
		overrides: overrides,
		snowflake: sf,
		gateway:   gw,
		perms:     perms,
	}
}

// CreateChannel creates a channel in a server.
func (s *ChannelService) CreateChannel(ctx context.Context, serverID, userID int64, name string, chType models.ChannelType, parentID *int64) (*models.Channel, error) {
	if err := s.perms.RequireServerPermission(ctx, serverID, userID, permissions.ManageChannels); err != nil {
		return nil, err
	}
	if len(name) < 1 || len(name) > 100 {
		return nil, BadRequest("INVALID_NAME", "channel name must be 1-100 characters")
	}
	if chType != models.ChannelTypeText && chType != models.ChannelTypeCategory {
		return nil, BadRequest("INVALID_TYPE", "unknown channel type")
	}

	if parentID != nil {
		parent, err := s.channels.GetByID(ctx, *parentID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if parent == nil || parent.ServerID != serverID || parent.Type != models.ChannelTypeCategory {
			return nil, BadRequest("INVALID_PARENT", "parent must be a category in the same server")
		}
	}

	siblings, err := s.channels.GetByServerID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	channel := &models.Channel{
		ID:       s.snowflake.Generate().Int64(),
		ServerID: serverID,
		Name:     name,
		Type:     chType,
		Position: len(siblings),
		ParentID: parentID,
	}
	if err := s.channels.Create(ctx, channel); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventChannelCreate, channel)
	return channel, nil
}

// GetChannel returns a channel if the user can read it.
func (s *ChannelService) GetChannel(ctx context.Context, channelID, userID int64) (*models.Channel, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if channel == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}
	if err := s.perms.RequireChannelPermission(ctx, channel.ServerID, channelID, userID, permissions.ReadMessages); err != nil {
		return nil, err
	}
	return channel, nil
}

// ListChannels returns a server's channels the user can read, in display
// order.
func (s *ChannelService) ListChannels(ctx context.Context, serverID, userID int64) ([]models.Channel, error) {
	member, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	channels, err := s.channels.GetByServerID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	visible := []models.Channel{}
	for _, ch := range channels {
		if err := s.perms.RequireChannelPermission(ctx, serverID, ch.ID, userID, permissions.ReadMessages); err == nil {
			visible = append(visible, ch)
		}
	}
	return visible, nil
}

// UpdateChannel updates channel name, topic, and/or position.
func (s *ChannelService) UpdateChannel(ctx context.Context, channelID, userID int64, name *string, topic *string, position *int) (*models.Channel, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if channel == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}
	if err := s.perms.RequireServerPermission(ctx, channel.ServerID, userID, permissions.ManageChannels); err != nil {
		return nil, err
	}

	if name != nil {
		if len(*name) < 1 || len(*name) > 100 {
			return nil, BadRequest("INVALID_NAME", "channel name must be 1-100 characters")
		}
		channel.Name = *name
	}
	if topic != nil {
		channel.Topic = topic
	}
	if position != nil {
		channel.Position = *position
	}

	if err := s.channels.Update(ctx, channel); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(channel.ServerID, gateway.EventChannelUpdate, channel)
	return channel, nil
}

// DeleteChannel deletes a channel and its overrides.
func (s *ChannelService) DeleteChannel(ctx context.Context, channelID, userID int64) error {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if channel == nil {
		return NotFound("NOT_FOUND", "channel not found")
	}
	if err := s.perms.RequireServerPermission(ctx, channel.ServerID, userID, permissions.ManageChannels); err != nil {
		return err
	}

	if err := s.channels.Delete(ctx, channelID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(channel.ServerID, gateway.EventChannelDelete, map[string]any{"id": channelID, "server_id": channel.ServerID})
	return nil
}

// ListChannelOverrides returns a channel's permission overrides, visible to
// members who can manage roles.
func (s *ChannelService) ListChannelOverrides(ctx context.Context, channelID, userID int64) ([]models.ChannelOverride, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if channel == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}
	if err := s.perms.RequireServerPermission(ctx, channel.ServerID, userID, permissions.ManageRoles); err != nil {
		return nil, err
	}

	overrides, err := s.overrides.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if overrides == nil {
		overrides = []models.ChannelOverride{}
	}
	return overrides, nil
}
