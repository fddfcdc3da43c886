package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/mvasilev/concord/internal/models"
	"github.com/mvasilev/concord/internal/service"
)

func newMessageHandler(
	messages *mockMessageRepo,
	channels *mockChannelRepo,
	conversations *mockConversationRepo,
	members *mockMemberRepo,
	users *mockUserRepo,
	servers *mockServerRepo,
	roles *mockRoleRepo,
	overrides *mockOverrideRepo,
	gw *mockGateway,
) *MessageHandler {
	perms := service.NewPermissionChecker(servers, members, roles, overrides)
	svc := service.NewMessageService(messages, channels, conversations, members, users, testSnowflake(), gw, perms)
	return NewMessageHandler(svc)
}

func TestSendMessage_FansOutToMembers(t *testing.T) {
	gw := &mockGateway{}
	channels := &mockChannelRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Channel, error) {
			return &models.Channel{ID: 5, ServerID: 1}, nil
		},
	}
	servers := &mockServerRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Server, error) {
			return &models.Server{ID: 1, OwnerID: 100}, nil
		},
	}
	members := &mockMemberRepo{
		ListUserIDsFn: func(ctx context.Context, serverID int64) ([]int64, error) {
			return []int64{100, 200, 300}, nil
		},
	}
	h := newMessageHandler(&mockMessageRepo{}, channels, &mockConversationRepo{}, members, &mockUserRepo{}, servers, &mockRoleRepo{}, &mockOverrideRepo{}, gw)

	body := `{"content":"hello <@200>"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/channels/5/messages", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("5")
	setAuthUser(c, 100)

	if err := h.SendMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(gw.events) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(gw.events))
	}
	ev := gw.events[0]
	if len(ev.Recipients) != 3 {
		t.Errorf("expected 3 recipients, got %v", ev.Recipients)
	}
	if ev.AuthorID != 100 {
		t.Errorf("expected author 100, got %d", ev.AuthorID)
	}
	if ev.Context.ChannelID != 5 || ev.Context.ServerID != 1 {
		t.Errorf("unexpected dispatch context: %+v", ev.Context)
	}
	if len(ev.Mentions) != 1 || ev.Mentions[0] != 200 {
		t.Errorf("expected mention of 200, got %v", ev.Mentions)
	}
}

func TestSendMessage_MentionOfNonMemberIgnored(t *testing.T) {
	gw := &mockGateway{}
	channels := &mockChannelRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Channel, error) {
			return &models.Channel{ID: 5, ServerID: 1}, nil
		},
	}
	servers := &mockServerRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Server, error) {
			return &models.Server{ID: 1, OwnerID: 100}, nil
		},
	}
	members := &mockMemberRepo{
		ListUserIDsFn: func(ctx context.Context, serverID int64) ([]int64, error) {
			return []int64{100, 200}, nil
		},
	}
	h := newMessageHandler(&mockMessageRepo{}, channels, &mockConversationRepo{}, members, &mockUserRepo{}, servers, &mockRoleRepo{}, &mockOverrideRepo{}, gw)

	body := `{"content":"hi <@999>"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/channels/5/messages", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("5")
	setAuthUser(c, 100)

	if err := h.SendMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(gw.events[0].Mentions) != 0 {
		t.Errorf("expected no mentions, got %v", gw.events[0].Mentions)
	}
}

func TestSendMessage_NoSendPermission(t *testing.T) {
	gw := &mockGateway{}
	channels := &mockChannelRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Channel, error) {
			return &models.Channel{ID: 5, ServerID: 1}, nil
		},
	}
	servers := &mockServerRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Server, error) {
			return &models.Server{ID: 1, OwnerID: 999}, nil
		},
	}
	members := &mockMemberRepo{
		GetByServerAndUserFn: func(ctx context.Context, serverID, userID int64) (*models.Member, error) {
			return &models.Member{ServerID: serverID, UserID: userID}, nil
		},
	}
	roles := &mockRoleRepo{
		GetByMemberFn: func(ctx context.Context, serverID, userID int64) ([]models.Role, error) {
			return []models.Role{{ID: 1, ReadMessages: true}}, nil // no sendMessages
		},
	}
	h := newMessageHandler(&mockMessageRepo{}, channels, &mockConversationRepo{}, members, &mockUserRepo{}, servers, roles, &mockOverrideRepo{}, gw)

	body := `{"content":"hello"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/channels/5/messages", strings.NewReader(body))
	c.SetParamNames("id")
	c.SetParamValues("5")
	setAuthUser(c, 100)

	if err := h.SendMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(gw.events) != 0 {
		t.Errorf("expected no dispatch, got %d", len(gw.events))
	}
}

func TestSendDirectMessage_CreatesConversation(t *testing.T) {
	gw := &mockGateway{}
	users := &mockUserRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Username: "peer"}, nil
		},
	}
	var created *models.Conversation
	conversations := &mockConversationRepo{
		CreateFn: func(ctx context.Context, conv *models.Conversation) error {
			created = conv
			return nil
		},
	}
	h := newMessageHandler(&mockMessageRepo{}, &mockChannelRepo{}, conversations, &mockMemberRepo{}, users, &mockServerRepo{}, &mockRoleRepo{}, &mockOverrideRepo{}, gw)

	body := `{"recipient_id":"200","content":"hey"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/users/@me/conversations", strings.NewReader(body))
	setAuthUser(c, 300)

	if err := h.SendDirectMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if created == nil {
		t.Fatal("expected conversation created")
	}
	// Participants are stored in normalized order.
	if created.UserA != 200 || created.UserB != 300 {
		t.Errorf("expected participants 200/300, got %d/%d", created.UserA, created.UserB)
	}

	if len(gw.events) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(gw.events))
	}
	ev := gw.events[0]
	if ev.Context.ConversationID != created.ID {
		t.Errorf("expected conversation context %d, got %+v", created.ID, ev.Context)
	}
	if len(ev.Recipients) != 2 {
		t.Errorf("expected both participants as recipients, got %v", ev.Recipients)
	}
}

func TestSendDirectMessage_ToSelfRejected(t *testing.T) {
	h := newMessageHandler(&mockMessageRepo{}, &mockChannelRepo{}, &mockConversationRepo{}, &mockMemberRepo{}, &mockUserRepo{}, &mockServerRepo{}, &mockRoleRepo{}, &mockOverrideRepo{}, &mockGateway{})

	body := `{"recipient_id":"300","content":"hey me"}`
	c, rec := newTestContext(http.MethodPost, "/api/v1/users/@me/conversations", strings.NewReader(body))
	setAuthUser(c, 300)

	if err := h.SendDirectMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteMessage_AuthorAlwaysAllowed(t *testing.T) {
	gw := &mockGateway{}
	deleted := false
	messages := &mockMessageRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Message, error) {
			return &models.Message{ID: id, ConversationID: 9, AuthorID: 300}, nil
		},
		DeleteFn: func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		},
	}
	conversations := &mockConversationRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*models.Conversation, error) {
			return &models.Conversation{ID: 9, UserA: 200, UserB: 300}, nil
		},
	}
	h := newMessageHandler(messages, &mockChannelRepo{}, conversations, &mockMemberRepo{}, &mockUserRepo{}, &mockServerRepo{}, &mockRoleRepo{}, &mockOverrideRepo{}, gw)

	c, rec := newTestContext(http.MethodDelete, "/api/v1/messages/42", nil)
	c.SetParamNames("id")
	c.SetParamValues("42")
	setAuthUser(c, 300)

	if err := h.DeleteMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if !deleted {
		t.Error("expected message deleted")
	}
}
