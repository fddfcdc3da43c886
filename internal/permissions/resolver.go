package permissions

import "github.com/mvasilev/concord/internal/models"

// decision is one override's verdict on a single permission key.
type decision int8

const (
	abstain decision = iota
	allowed
	denied
)

// decide returns the override's verdict on key. A key listed under both
// allow and deny counts as denied.
func decide(o models.ChannelOverride, key Key) decision {
	for _, k := range o.Deny {
		if Key(k) == key {
			return denied
		}
	}
	for _, k := range o.Allow {
		if Key(k) == key {
			return allowed
		}
	}
	return abstain
}

// Resolve computes whether the user holds key in one channel.
//  1. Any assigned role with administrator grants everything.
//  2. Otherwise the base grant is whether any assigned role carries the key.
//  3. Overrides are then consulted as an ordered chain, most authoritative
//     first: the user-targeted override, then the override of each assigned
//     role from most senior down. The first override with a verdict on the
//     key wins; deny beats allow within a single override.
//  4. With no verdict from any override, the base grant stands.
//
// Overrides targeting roles the user does not hold, or other users, are
// ignored. The result must not be cached across requests.
func Resolve(key Key, assignedRoles []models.Role, overrides []models.ChannelOverride, userID int64) bool {
	for _, r := range assignedRoles {
		if r.Administrator {
			return true
		}
	}

	for _, o := range orderedOverrides(assignedRoles, overrides, userID) {
		switch decide(o, key) {
		case allowed:
			return true
		case denied:
			return false
		}
	}

	for _, r := range assignedRoles {
		if RoleGrants(r, key) {
			return true
		}
	}
	return false
}

// orderedOverrides returns the overrides that apply to this user, most
// authoritative first: the user-targeted override (at most one), then
// role-targeted overrides in hierarchy order of the user's roles.
func orderedOverrides(assignedRoles []models.Role, overrides []models.ChannelOverride, userID int64) []models.ChannelOverride {
	var chain []models.ChannelOverride

	for _, o := range overrides {
		if o.UserID != 0 && o.UserID == userID {
			chain = append(chain, o)
			break
		}
	}

	byRole := make(map[int64]models.ChannelOverride, len(overrides))
	for _, o := range overrides {
		if o.UserID == 0 && o.RoleID != 0 {
			byRole[o.RoleID] = o
		}
	}
	for _, r := range SortByHierarchy(assignedRoles) {
		if o, ok := byRole[r.ID]; ok {
			chain = append(chain, o)
		}
	}
	return chain
}
