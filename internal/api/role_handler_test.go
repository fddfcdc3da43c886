package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/mvasilev/concord/internal/models"
	"github.com/mvasilev/concord/internal/service"
)

func newRoleHandler(
	servers *mockServerRepo,
	roles *mockRoleRepo,
	members *mockMemberRepo,
	channels *mockChannelRepo,
	overrides *mockOverrideRepo,
	gw *mockGateway,
) *RoleHandler {
	perms := service.NewPermissionChecker(servers, members, roles, overrides)
	svc := service.NewRoleService(roles, members, channels, overrides, testSnowflake(), gw, perms)
	return NewRoleHandler(svc)
}

func TestCreateRole_Success(t *testing.T) {
	gw := &mockGateway{}
	servers := &mockServerRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Server, error) {
			return &models.Server{ID: 1, OwnerID: 100}, nil
		},
	}
	roles := &mockRoleRepo{}
	h := newRoleHandler(servers, roles, &mockMemberRepo{}, &mockChannelRepo{}, &mockOverrideRepo{}, gw)

	body := `{"name":"Moderator","color":255,"position":1,"permissions":{"manageMessages":true}}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/servers/1/roles", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("1")
	setAuthUser(c, 100) // owner

	err := h.CreateRole(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var role models.Role
	if err := json.Unmarshal(rec.Body.Bytes(), &role); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if role.Name != "Moderator" {
		t.Errorf("expected name Moderator, got %s", role.Name)
	}
	if !role.ManageMessages {
		t.Error("expected manageMessages to be granted")
	}
}

func TestCreateRole_UnknownPermissionKey(t *testing.T) {
	gw := &mockGateway{}
	servers := &mockServerRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Server, error) {
			return &models.Server{ID: 1, OwnerID: 100}, nil
		},
	}
	h := newRoleHandler(servers, &mockRoleRepo{}, &mockMemberRepo{}, &mockChannelRepo{}, &mockOverrideRepo{}, gw)

	body := `{"name":"Moderator","permissions":{"launchMissiles":true}}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/servers/1/roles", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("1")
	setAuthUser(c, 100)

	if err := h.CreateRole(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Error.Code != "INVALID_PERMISSION" {
		t.Errorf("expected INVALID_PERMISSION, got %s", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "launchMissiles") {
		t.Errorf("expected message to name the bad key, got %q", resp.Error.Message)
	}
}

func TestCreateRole_HierarchyViolation(t *testing.T) {
	gw := &mockGateway{}
	servers := &mockServerRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Server, error) {
			return &models.Server{ID: 1, OwnerID: 999}, nil // actor 100 is NOT the owner
		},
	}
	roles := &mockRoleRepo{
		GetByMemberFn: func(ctx context.Context, serverID, userID int64) ([]models.Role, error) {
			// Actor's highest role is position 5
			return []models.Role{{ID: 10, Position: 5}}, nil
		},
	}
	h := newRoleHandler(servers, roles, &mockMemberRepo{}, &mockChannelRepo{}, &mockOverrideRepo{}, gw)

	// Creating at position 5 (equal to highest) must fail.
	body := `{"name":"HighRole","position":5}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/servers/1/roles", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("1")
	setAuthUser(c, 100)

	if err := h.CreateRole(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Error.Code != "ROLE_HIERARCHY" {
		t.Errorf("expected ROLE_HIERARCHY, got %s", resp.Error.Code)
	}
}

func TestDeleteRole_DefaultRoleProtected(t *testing.T) {
	gw := &mockGateway{}
	servers := &mockServerRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Server, error) {
			return &models.Server{ID: 1, OwnerID: 100}, nil
		},
	}
	roles := &mockRoleRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Role, error) {
			return &models.Role{ID: 7, ServerID: 1, Name: "@everyone", IsDefault: true}, nil
		},
	}
	h := newRoleHandler(servers, roles, &mockMemberRepo{}, &mockChannelRepo{}, &mockOverrideRepo{}, gw)

	c, rec := newTestContext(http.MethodDelete, "/api/v1/servers/1/roles/7", nil)
	c.SetParamNames("id", "role_id")
	c.SetParamValues("1", "7")
	setAuthUser(c, 100)

	if err := h.DeleteRole(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAssignRole_Success(t *testing.T) {
	gw := &mockGateway{}
	servers := &mockServerRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Server, error) {
			return &models.Server{ID: 1, OwnerID: 100}, nil
		},
	}
	roles := &mockRoleRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Role, error) {
			return &models.Role{ID: 7, ServerID: 1, Position: 3}, nil
		},
	}
	var granted []int64
	members := &mockMemberRepo{
		GetByServerAndUserFn: func(ctx context.Context, serverID, userID int64) (*models.Member, error) {
			return &models.Member{ServerID: serverID, UserID: userID}, nil
		},
		AddRoleFn: func(ctx context.Context, serverID, userID, roleID int64) error {
			granted = append(granted, roleID)
			return nil
		},
	}
	h := newRoleHandler(servers, roles, members, &mockChannelRepo{}, &mockOverrideRepo{}, gw)

	c, rec := newTestContext(http.MethodPut, "/api/v1/servers/1/members/200/roles/7", nil)
	c.SetParamNames("id", "user_id", "role_id")
	c.SetParamValues("1", "200", "7")
	setAuthUser(c, 100)

	if err := h.AssignRole(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(granted) != 1 || granted[0] != 7 {
		t.Errorf("expected role 7 granted once, got %v", granted)
	}
}

func TestSetChannelOverride_RoleTarget(t *testing.T) {
	gw := &mockGateway{}
	channels := &mockChannelRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Channel, error) {
			return &models.Channel{ID: 5, ServerID: 1}, nil
		},
	}
	roles := &mockRoleRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Role, error) {
			return &models.Role{ID: 7, ServerID: 1}, nil
		},
	}
	var stored *models.ChannelOverride
	overrides := &mockOverrideRepo{
		SetFn: func(ctx context.Context, o *models.ChannelOverride) error {
			stored = o
			return nil
		},
	}
	h := newRoleHandler(&mockServerRepo{}, roles, &mockMemberRepo{}, channels, overrides, gw)

	body := `{"role_id":"7","allow":["sendMessages"],"deny":["manageMessages"]}`
	c, rec := newTestContext(http.MethodPut, "/api/v1/channels/5/permissions", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("5")
	setAuthUser(c, 100)

	if err := h.SetChannelOverride(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stored == nil || stored.ChannelID != 5 || stored.RoleID != 7 {
		t.Fatalf("override not stored correctly: %+v", stored)
	}
}

func TestSetChannelOverride_RejectsBothTargets(t *testing.T) {
	h := newRoleHandler(&mockServerRepo{}, &mockRoleRepo{}, &mockMemberRepo{}, &mockChannelRepo{}, &mockOverrideRepo{}, &mockGateway{})

	body := `{"role_id":"7","user_id":"8","allow":["sendMessages"],"deny":[]}`
	c, rec := newTestContext(http.MethodPut, "/api/v1/channels/5/permissions", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("5")
	setAuthUser(c, 100)

	if err := h.SetChannelOverride(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Error.Code != "INVALID_TARGET" {
		t.Errorf("expected INVALID_TARGET, got %s", resp.Error.Code)
	}
}

func TestSetChannelOverride_RejectsUnknownKey(t *testing.T) {
	h := newRoleHandler(&mockServerRepo{}, &mockRoleRepo{}, &mockMemberRepo{}, &mockChannelRepo{}, &mockOverrideRepo{}, &mockGateway{})

	body := `{"role_id":"7","allow":["flyToTheMoon"],"deny":[]}`
	c, rec := newTestContext(http.MethodPut, "/api/v1/channels/5/permissions", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("5")
	setAuthUser(c, 100)

	if err := h.SetChannelOverride(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if !strings.Contains(resp.Error.Message, "flyToTheMoon") {
		t.Errorf("expected message to name the bad key, got %q", resp.Error.Message)
	}
}
