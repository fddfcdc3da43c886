package service

import (
	"context"

	"github.com/mvasilev/concord/internal/database"
	"github.com/mvasilev/concord/internal/permissions"
)

// PermissionChecker loads the role and override records for a request and
// runs the permission resolver over them. Results are computed fresh on
// every call; nothing here may be cached, since overrides and role
// assignments change underneath running requests.
type PermissionChecker struct {
	servers   database.ServerRepository
	members   database.MemberRepository
	roles     database.RoleRepository
	overrides database.ChannelOverrideRepository
}

// NewPermissionChecker creates a PermissionChecker.
func NewPermissionChecker(
	servers database.ServerRepository,
	members database.MemberRepository,
	roles database.RoleRepository,
	overrides database.ChannelOverrideRepository,
) *PermissionChecker {
	return &PermissionChecker{
		servers:   servers,
		members:   members,
		roles:     roles,
		overrides: overrides,
	}
}

// RequireServerPermission checks that the user holds key anywhere in the
// server (no channel overrides involved). Server owners bypass the check.
func (p *PermissionChecker) RequireServerPermission(ctx context.Context, serverID, userID int64, key permissions.Key) error {
	server, err := p.servers.GetByID(ctx, serverID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return NotFound("NOT_FOUND", "server not found")
	}
	if server.OwnerID == userID {
		return nil
	}

	member, err := p.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return Forbidden("FORBIDDEN", "you are not a member of this server")
	}

	assigned, err := p.roles.GetByMember(ctx, serverID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	if !permissions.Resolve(key, assigned, nil, userID) {
		return Forbidden("MISSING_PERMISSIONS", "you do not have permission to perform this action")
	}
	return nil
}

// RequireChannelPermission checks that the user holds key in one channel,
// applying that channel's role- and user-targeted overrides on top of the
// user's assigned roles. Server owners bypass the check.
func (p *PermissionChecker) RequireChannelPermission(ctx context.Context, serverID, channelID, userID int64, key permissions.Key) error {
	server, err := p.servers.GetByID(ctx, serverID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return NotFound("NOT_FOUND", "server not found")
	}
	if server.OwnerID == userID {
		return nil
	}

	member, err := p.members.GetByServerAndUser(ctx, serverID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return Forbidden("FORBIDDEN", "you are not a member of this server")
	}

	assigned, err := p.roles.GetByMember(ctx, serverID, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	channelOverrides, err := p.overrides.GetByChannel(ctx, channelID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	if !permissions.Resolve(key, assigned, channelOverrides, userID) {
		return Forbidden("MISSING_PERMISSIONS", "you do not have the required permissions")
	}
	return nil
}

// IsServerOwner returns true if the user owns the server.
func (p *PermissionChecker) IsServerOwner(ctx context.Context, serverID, userID int64) (bool, error) {
	server, err := p.servers.GetByID(ctx, serverID)
	if err != nil {
		return false, Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return false, nil
	}
	return server.OwnerID == userID, nil
}

// HighestRolePosition returns the highest position among the user's roles.
func (p *PermissionChecker) HighestRolePosition(ctx context.Context, serverID, userID int64) (int, error) {
	assigned, err := p.roles.GetByMember(ctx, serverID, userID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}
	highest := 0
	for _, r := range assigned {
		if r.Position > highest {
			highest = r.Position
		}
	}
	return highest, nil
}
