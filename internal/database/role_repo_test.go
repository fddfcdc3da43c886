package database

import (
	"context"
	"testing"

	"github.com/mvasilev/concord/internal/models"
)

func TestRoleRepo_CRUD(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	ownerID := createTestUser(t, pool)
	serverID := createTestServer(t, pool, ownerID)

	roles := NewRoleRepository(pool)
	role := &models.Role{
		ID:           nextID(),
		ServerID:     serverID,
		Name:         "Moderator",
		Color:        0x5865F2,
		Position:     5,
		ReadMessages: true,
		SendMessages: true,
		ManageMessages: true,
	}
	if err := roles.Create(ctx, role); err != nil {
		t.Fatalf("creating role: %v", err)
	}

	got, err := roles.GetByID(ctx, role.ID)
	if err != nil {
		t.Fatalf("getting role: %v", err)
	}
	if got == nil {
		t.Fatal("role not found after create")
	}
	if !got.ManageMessages || got.Administrator {
		t.Errorf("flags not persisted correctly: %+v", got)
	}

	got.Administrator = true
	got.Position = 7
	if err := roles.Update(ctx, got); err != nil {
		t.Fatalf("updating role: %v", err)
	}
	got2, _ := roles.GetByID(ctx, role.ID)
	if !got2.Administrator || got2.Position != 7 {
		t.Errorf("update not persisted: %+v", got2)
	}

	if err := roles.Delete(ctx, role.ID); err != nil {
		t.Fatalf("deleting role: %v", err)
	}
	gone, err := roles.GetByID(ctx, role.ID)
	if err != nil {
		t.Fatalf("getting deleted role: %v", err)
	}
	if gone != nil {
		t.Error("role should be gone after delete")
	}
}

func TestRoleRepo_GetByServerID_Ordering(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	ownerID := createTestUser(t, pool)
	serverID := createTestServer(t, pool, ownerID)

	roles := NewRoleRepository(pool)
	low := &models.Role{ID: nextID(), ServerID: serverID, Name: "low", Position: 1}
	high := &models.Role{ID: nextID(), ServerID: serverID, Name: "high", Position: 9}
	for _, r := range []*models.Role{low, high} {
		if err := roles.Create(ctx, r); err != nil {
			t.Fatalf("creating role: %v", err)
		}
	}

	list, err := roles.GetByServerID(ctx, serverID)
	if err != nil {
		t.Fatalf("listing roles: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("want 2 roles, got %d", len(list))
	}
	if list[0].ID != high.ID {
		t.Error("roles should come back most senior first")
	}
}

func TestRoleRepo_GetByMember(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	ownerID := createTestUser(t, pool)
	userID := createTestUser(t, pool)
	serverID := createTestServer(t, pool, ownerID)

	members := NewMemberRepository(pool)
	if err := members.Create(ctx, &models.Member{ServerID: serverID, UserID: userID}); err != nil {
		t.Fatalf("creating member: %v", err)
	}

	roles := NewRoleRepository(pool)
	role := &models.Role{ID: nextID(), ServerID: serverID, Name: "dj", Position: 3, SendMessages: true}
	if err := roles.Create(ctx, role); err != nil {
		t.Fatalf("creating role: %v", err)
	}
	if err := members.AddRole(ctx, serverID, userID, role.ID); err != nil {
		t.Fatalf("assigning role: %v", err)
	}

	assigned, err := roles.GetByMember(ctx, serverID, userID)
	if err != nil {
		t.Fatalf("getting member roles: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != role.ID {
		t.Fatalf("want the assigned role back, got %+v", assigned)
	}

	if err := members.RemoveRole(ctx, serverID, userID, role.ID); err != nil {
		t.Fatalf("removing role: %v", err)
	}
	assigned, _ = roles.GetByMember(ctx, serverID, userID)
	if len(assigned) != 0 {
		t.Error("no roles should remain after removal")
	}
}
