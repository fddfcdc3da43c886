package service

import (
	"context"
	"fmt"

	"github.com/mvasilev/concord/internal/database"
	"github.com/mvasilev/concord/internal/gateway"
	"github.com/mvasilev/concord/internal/models"
	"github.com/mvasilev/concord/internal/permissions"
	"github.com/mvasilev/concord/internal/snowflake"
)

// RoleService handles role and channel override business logic.
type RoleService struct {
	roles     database.RoleRepository
	members   database.MemberRepository
	channels  database.ChannelRepository
	overrides database.ChannelOverrideRepository
	snowflake *snowflake.Generator
	gateway   gateway.Dispatcher
	perms     *PermissionChecker
}

// NewRoleService creates a RoleService.
func NewRoleService(
	roles database.RoleRepository,
	members database.MemberRepository,
	channels database.ChannelRepository,
	overrides database.ChannelOverrideRepository,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *RoleService {
	return &RoleService{
		roles:     roles,
		members:   members,
		channels:  channels,
		overrides: overrides,
		snowflake: sf,
		gateway:   gw,
		perms:     perms,
	}
}

// CreateRole creates a new role in a server with hierarchy enforcement:
// non-owners cannot create a role at or above their own highest position.
// Flag names outside the permission key set are rejected.
func (s *RoleService) CreateRole(ctx context.Context, serverID, actorID int64, name string, color, position int, mentionable bool, flags map[string]bool) (*models.Role, error) {
	if name == "" || len(name) > 100 {
		return nil, BadRequest("INVALID_NAME", "name must be 1-100 characters")
	}

	isOwner, err := s.perms.IsServerOwner(ctx, serverID, actorID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		highest, err := s.perms.HighestRolePosition(ctx, serverID, actorID)
		if err != nil {
			return nil, err
		}
		if position >= highest {
			return nil, RoleHierarchyError("cannot create a role at or above your highest role position")
		}
	}

	role := models.Role{
		ID:          s.snowflake.Generate().Int64(),
		ServerID:    serverID,
		Name:        name,
		Color:       color,
		Position:    position,
		Mentionable: mentionable,
	}
	for flag, granted := range flags {
		if err := setRoleFlag(&role, flag, granted); err != nil {
			return nil, BadRequest("INVALID_PERMISSION", err.Error())
		}
	}

	if err := s.roles.Create(ctx, &role); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventServerRoleCreate, map[string]any{"server_id": serverID, "role": role})
	return &role, nil
}

// ListRoles returns all roles for a server, most senior first.
func (s *RoleService) ListRoles(ctx context.Context, serverID int64) ([]models.Role, error) {
	roles, err := s.roles.GetByServerID(ctx, serverID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return permissions.SortByHierarchy(roles), nil
}

// RoleUpdate carries the updatable role fields; nil means unchanged.
type RoleUpdate struct {
	Name        *string
	Color       *int
	Position    *int
	Flags       map[string]bool
	Mentionable *bool
}

// UpdateRole updates a role with hierarchy enforcement. Flag names outside
// the permission key set are rejected.
func (s *RoleService) UpdateRole(ctx context.Context, serverID, actorID, roleID int64, update RoleUpdate) (*models.Role, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if role == nil || role.ServerID != serverID {
		return nil, NotFound("NOT_FOUND", "role not found")
	}

	isOwner, err := s.perms.IsServerOwner(ctx, serverID, actorID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		highest, err := s.perms.HighestRolePosition(ctx, serverID, actorID)
		if err != nil {
			return nil, err
		}
		if role.Position >= highest {
			return nil, RoleHierarchyError("cannot modify a role at or above your highest role position")
		}
	}

	if update.Name != nil {
		if *update.Name == "" || len(*update.Name) > 100 {
			return nil, BadRequest("INVALID_NAME", "name must be 1-100 characters")
		}
		role.Name = *update.Name
	}
	if update.Color != nil {
		role.Color = *update.Color
	}
	if update.Position != nil {
		role.Position = *update.Position
	}
	if update.Mentionable != nil {
		role.Mentionable = *update.Mentionable
	}
	for name, granted := range update.Flags {
		if err := setRoleFlag(role, name, granted); err != nil {
			return nil, BadRequest("INVALID_PERMISSION", err.Error())
		}
	}

	if err := s.roles.Update(ctx, role); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventServerRoleUpdate, map[string]any{"server_id": serverID, "role": role})
	return role, nil
}

// DeleteRole deletes a role with hierarchy enforcement. The default role
// cannot be deleted.
func (s *RoleService) DeleteRole(ctx context.Context, serverID, actorID, roleID int64) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if role == nil || role.ServerID != serverID {
		return NotFound("NOT_FOUND", "role not found")
	}
	if role.IsDefault {
		return Forbidden("CANNOT_DELETE", "cannot delete the default role")
	}

	isOwner, err := s.perms.IsServerOwner(ctx, serverID, actorID)
	if err != nil {
		return err
	}
	if !isOwner {
		highest, err := s.perms.HighestRolePosition(ctx, serverID, actorID)
		if err != nil {
			return err
		}
		if role.Position >= highest {
			return RoleHierarchyError("cannot delete a role at or above your highest role position")
		}
	}

	if err := s.roles.Delete(ctx, roleID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventServerRoleDelete, map[string]any{"server_id": serverID, "role_id": roleID})
	return nil
}

// AssignRole grants a role to a member with hierarchy enforcement.
func (s *RoleService) AssignRole(ctx context.Context, serverID, actorID, userID, roleID int64) error {
	member, err := s.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return NotFound("NOT_FOUND", "member not found")
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if role == nil || role.ServerID != serverID {
		return NotFound("NOT_FOUND", "role not found")
	}

	isOwner, err := s.perms.IsServerOwner(ctx, serverID, actorID)
	if err != nil {
		return err
	}
	if !isOwner {
		highest, err := s.perms.HighestRolePosition(ctx, serverID, actorID)
		if err != nil {
			return err
		}
		if role.Position >= highest {
			return RoleHierarchyError("cannot assign a role at or above your highest role position")
		}
	}

	if err := s.members.AddRole(ctx, serverID, userID, roleID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventServerMemberUpdate, map[string]any{"server_id": serverID, "user_id": userID})
	return nil
}

// RemoveRole takes a role from a member with hierarchy enforcement.
func (s *RoleService) RemoveRole(ctx context.Context, serverID, actorID, userID, roleID int64) error {
	isOwner, err := s.perms.IsServerOwner(ctx, serverID, actorID)
	if err != nil {
		return err
	}
	if !isOwner {
		role, err := s.roles.GetByID(ctx, roleID)
		if err != nil {
			return Internal("INTERNAL", "internal server error")
		}
		if role != nil {
			highest, err := s.perms.HighestRolePosition(ctx, serverID, actorID)
			if err != nil {
				return err
			}
			if role.Position >= highest {
				return RoleHierarchyError("cannot remove a role at or above your highest role position")
			}
		}
	}

	if err := s.members.RemoveRole(ctx, serverID, userID, roleID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(serverID, gateway.EventServerMemberUpdate, map[string]any{"server_id": serverID, "user_id": userID})
	return nil
}

// SetChannelOverride validates and upserts a channel permission override.
// The override must target exactly one of a role or a user, and every key
// in the allow/deny sets must come from the permission key set; the
// resolver is never handed an invalid shape.
func (s *RoleService) SetChannelOverride(ctx context.Context, channelID int64, override models.ChannelOverride) (*models.ChannelOverride, error) {
	if (override.RoleID == 0) == (override.UserID == 0) {
		return nil, BadRequest("INVALID_TARGET", "override must target exactly one of role_id or user_id")
	}
	for _, k := range append(append([]string{}, override.Allow...), override.Deny...) {
		if !permissions.Key(k).Valid() {
			return nil, BadRequest("INVALID_PERMISSION", fmt.Sprintf("unknown permission key %q", k))
		}
	}

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}

	if override.RoleID != 0 {
		role, err := s.roles.GetByID(ctx, override.RoleID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if role == nil || role.ServerID != ch.ServerID {
			return nil, NotFound("NOT_FOUND", "role not found")
		}
	}

	override.ChannelID = channelID
	if override.Allow == nil {
		override.Allow = []string{}
	}
	if override.Deny == nil {
		override.Deny = []string{}
	}

	if err := s.overrides.Set(ctx, &override); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(ch.ServerID, gateway.EventChannelOverrideUpdate, map[string]any{"channel_id": channelID, "override": override})
	return &override, nil
}

// DeleteChannelOverride removes an override for a role or user target.
func (s *RoleService) DeleteChannelOverride(ctx context.Context, channelID, roleID, userID int64) error {
	if (roleID == 0) == (userID == 0) {
		return BadRequest("INVALID_TARGET", "override must target exactly one of role_id or user_id")
	}

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if ch == nil {
		return NotFound("NOT_FOUND", "channel not found")
	}

	if roleID != 0 {
		err = s.overrides.DeleteForRole(ctx, channelID, roleID)
	} else {
		err = s.overrides.DeleteForUser(ctx, channelID, userID)
	}
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchToServer(ch.ServerID, gateway.EventChannelOverrideDelete, map[string]any{"channel_id": channelID, "role_id": roleID, "user_id": userID})
	return nil
}

// setRoleFlag flips one permission flag by its key name.
func setRoleFlag(role *models.Role, name string, granted bool) error {
	switch permissions.Key(name) {
	case permissions.ReadMessages:
		role.ReadMessages = granted
	case permissions.SendMessages:
		role.SendMessages = granted
	case permissions.ManageMessages:
		role.ManageMessages = granted
	case permissions.ManageChannels:
		role.ManageChannels = granted
	case permissions.ManageRoles:
		role.ManageRoles = granted
	case permissions.ManageServer:
		role.ManageServer = granted
	case permissions.MentionEveryone:
		role.MentionEveryone = granted
	case permissions.Administrator:
		role.Administrator = granted
	default:
		return fmt.Errorf("unknown permission key %q", name)
	}
	return nil
}
