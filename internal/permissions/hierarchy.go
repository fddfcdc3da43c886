package permissions

import (
	"sort"

	"github.com/mvasilev/concord/internal/models"
)

// SortByHierarchy returns a new slice with the roles ordered most senior
// first: position descending, then id ascending for equal positions. The
// tie-break makes the order total and stable across calls; callers must
// not rely on insertion order for roles that share a position.
func SortByHierarchy(roles []models.Role) []models.Role {
	sorted := make([]models.Role, len(roles))
	copy(sorted, roles)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position > sorted[j].Position
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
