package service

import (
	"context"
	"time"

	"github.com/mvasilev/concord/internal/database"
	"github.com/mvasilev/concord/internal/gateway"
	"github.com/mvasilev/concord/internal/models"
	"github.com/mvasilev/concord/internal/permissions"
	"github.com/mvasilev/concord/internal/snowflake"
)

// ServerService handles server business logic.
type ServerService struct {
	servers   database.ServerRepository
	channels  database.ChannelRepository
	members   database.MemberRepository
	roles     database.RoleRepository
	snowflake *snowflake.Generator
	gateway   gateway.Dispatcher
	perms     *PermissionChecker
}

// NewServerService creates a ServerService.
func NewServerService(
	servers database.ServerRepository,
	channels database.ChannelRepository,
	members database.MemberRepository,
	roles database.RoleRepository,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *ServerService {
	return &ServerService{
		servers:   servers,
		channels:  channels,
		members:   members,
		roles:     roles,
		snowflake: sf,
		gateway:   gw,
		perms:     perms,
	}
}

// CreateServer creates a server with its default role, a general channel,
// and the creator as first member.
func (s *ServerService) CreateServer(ctx context.Context, userID int64, name string) (*models.Server, error) {
	if len(name) < 2 || len(name) > 100 {
		return nil, BadRequest("INVALID_NAME", "server name must be 2-100 characters")
	}

	now := time.Now()

	server := &models.Server{
		ID:        s.snowflake.Generate().Int64(),
		Name:      name,
		OwnerID:   userID,
		CreatedAt: now,
	}
	if err := s.servers.Create(ctx, server); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	everyone := &models.Role{
		ID:           s.snowflake.Generate().Int64(),
		ServerID:     server.ID,
		Name:         "@everyone",
		Position:     0,
		ReadMessages: true,
		SendMessages: true,
		IsDefault:    true,
	}
	if err := s.roles.Create(ctx, everyone); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	admin := &models.Role{
		ID:            s.snowflake.Generate().Int64(),
		ServerID:      server.ID,
		Name:          "Admin",
		Position:      1,
		Administrator: true,
	}
	if err := s.roles.Create(ctx, admin); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	member := &models.Member{
		ServerID: server.ID,
		UserID:   userID,
		JoinedAt: now,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	if err := s.members.AddRole(ctx, server.ID, userID, everyone.ID); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if err := s.members.AddRole(ctx, server.ID, userID, admin.ID); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	general := &models.Channel{
		ID:       s.snowflake.Generate().Int64(),
		ServerID: server.ID,
		Name:     "general",
		Type:     models.ChannelTypeText,
		Position: 0,
	}
	if err := s.channels.Create(ctx, general); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToUser(userID, gateway.EventServerCreate, server)
	return server, nil
}

// GetServer returns a server if the user is a member.
func (s *ServerService) GetServer(ctx context.Context, serverID, userID int64) (*models.Server, error) {
	member, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	return server, nil
}

// UpdateServer updates server name and/or icon.
func (s *ServerService) UpdateServer(ctx context.Context, serverID, userID int64, name *string, icon *string) (*models.Server, error) {
	if err := s.perms.RequireServerPermission(ctx, serverID, userID, permissions.ManageServer); err != nil {
		return nil, err
	}

	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	if name != nil {
		if len(*name) < 2 || len(*name) > 100 {
			return nil, BadRequest("INVALID_NAME", "server name must be 2-100 characters")
		}
		server.Name = *name
	}
	if icon != nil {
		server.IconHash = icon
	}

	if err := s.servers.Update(ctx, server); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventServerUpdate, server)
	return server, nil
}

// DeleteServer deletes a server. Only the owner can delete.
func (s *ServerService) DeleteServer(ctx context.Context, serverID, userID int64) error {
	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return NotFound("NOT_FOUND", "server not found")
	}
	if server.OwnerID != userID {
		return Forbidden("FORBIDDEN", "only the server owner can delete the server")
	}

	if err := s.servers.Delete(ctx, serverID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventServerDelete, map[string]any{"id": serverID})
	return nil
}

// ListMyServers returns all servers the user is a member of.
func (s *ServerService) ListMyServers(ctx context.Context, userID int64) ([]models.Server, error) {
	servers, err := s.servers.GetByMember(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if servers == nil {
		servers = []models.Server{}
	}
	return servers, nil
}

// JoinServer adds a user to a server and grants the default role.
func (s *ServerService) JoinServer(ctx context.Context, serverID, userID int64) (*models.Server, error) {
	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	existing, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if existing != nil {
		return nil, Conflict("ALREADY_MEMBER", "already a member of this server")
	}

	member := &models.Member{
		ServerID: serverID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	roles, err := s.roles.GetByServerID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	for _, r := range roles {
		if r.IsDefault {
			if err := s.members.AddRole(ctx, serverID, userID, r.ID); err != nil {
				return nil, Internal("INTERNAL", "internal server error")
			}
			break
		}
	}

	s.gateway.DispatchToServer(serverID, gateway.EventServerMemberAdd, map[string]any{"server_id": serverID, "user_id": userID})
	s.gateway.SubscribeToServer(userID, serverID)
	s.gateway.DispatchToUser(userID, gateway.EventServerCreate, server)
	return server, nil
}

// LeaveServer removes a user from a server. The owner cannot leave.
func (s *ServerService) LeaveServer(ctx context.Context, serverID, userID int64) error {
	server, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return NotFound("NOT_FOUND", "server not found")
	}
	if server.OwnerID == userID {
		return Forbidden("OWNER_CANNOT_LEAVE", "the owner cannot leave the server")
	}

	member, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return NotFound("NOT_FOUND", "not a member of this server")
	}

	if err := s.members.Delete(ctx, serverID, userID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.UnsubscribeFromServer(userID, serverID)
	s.gateway.DispatchToServer(serverID, gateway.EventServerMemberRemove, map[string]any{"server_id": serverID, "user_id": userID})
	return nil
}

// ListMembers returns the members of a server, visible to members only.
func (s *ServerService) ListMembers(ctx context.Context, serverID, userID int64) ([]models.Member, error) {
	self, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if self == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	members, err := s.members.GetByServerID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if members == nil {
		members = []models.Member{}
	}
	return members, nil
}
