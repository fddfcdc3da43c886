package api

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/mvasilev/concord/internal/auth"
	"github.com/mvasilev/concord/internal/models"
	"github.com/mvasilev/concord/internal/notify"
	"github.com/mvasilev/concord/internal/snowflake"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestContext(method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func setAuthUser(c echo.Context, userID int64) {
	c.Set(auth.ContextUserIDKey, userID)
}

func testSnowflake() *snowflake.Generator {
	sf, _ := snowflake.NewGenerator(1)
	return sf
}

// ---------------------------------------------------------------------------
// Mock gateway dispatcher
// ---------------------------------------------------------------------------

type dispatchedEvent struct {
	ServerID   int64
	UserID     int64
	Recipients []int64
	AuthorID   int64
	Context    notify.Context
	Mentions   []int64
	Event      string
	Data       any
}

type mockGateway struct {
	mu     sync.Mutex
	events []dispatchedEvent
}

func (m *mockGateway) DispatchToServer(serverID int64, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{ServerID: serverID, Event: event, Data: data})
}

func (m *mockGateway) DispatchToUser(userID int64, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{UserID: userID, Event: event, Data: data})
}

func (m *mockGateway) DispatchMessage(recipients []int64, authorID int64, ctx notify.Context, mentions []int64, message any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{Recipients: recipients, AuthorID: authorID, Context: ctx, Mentions: mentions, Data: message})
}

func (m *mockGateway) SubscribeToServer(userID, serverID int64) {}

func (m *mockGateway) UnsubscribeFromServer(userID, serverID int64) {}

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

// mockUserRepo implements database.UserRepository.
type mockUserRepo struct {
	CreateFn        func(ctx context.Context, user *models.User) error
	GetByIDFn       func(ctx context.Context, id int64) (*models.User, error)
	GetByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	UpdateFn        func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	return nil
}

// mockServerRepo implements database.ServerRepository.
type mockServerRepo struct {
	CreateFn      func(ctx context.Context, server *models.Server) error
	GetByIDFn     func(ctx context.Context, id int64) (*models.Server, error)
	GetByMemberFn func(ctx context.Context, userID int64) ([]models.Server, error)
	UpdateFn      func(ctx context.Context, server *models.Server) error
	DeleteFn      func(ctx context.Context, id int64) error
}

func (m *mockServerRepo) Create(ctx context.Context, server *models.Server) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, server)
	}
	return nil
}

func (m *mockServerRepo) GetByID(ctx context.Context, id int64) (*models.Server, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockServerRepo) GetByMember(ctx context.Context, userID int64) ([]models.Server, error) {
	if m.GetByMemberFn != nil {
		return m.GetByMemberFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockServerRepo) Update(ctx context.Context, server *models.Server) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, server)
	}
	return nil
}

func (m *mockServerRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockChannelRepo implements database.ChannelRepository.
type mockChannelRepo struct {
	CreateFn        func(ctx context.Context, channel *models.Channel) error
	GetByIDFn       func(ctx context.Context, id int64) (*models.Channel, error)
	GetByServerIDFn func(ctx context.Context, serverID int64) ([]models.Channel, error)
	UpdateFn        func(ctx context.Context, channel *models.Channel) error
	DeleteFn        func(ctx context.Context, id int64) error
}

func (m *mockChannelRepo) Create(ctx context.Context, channel *models.Channel) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, channel)
	}
	return nil
}

func (m *mockChannelRepo) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockChannelRepo) GetByServerID(ctx context.Context, serverID int64) ([]models.Channel, error) {
	if m.GetByServerIDFn != nil {
		return m.GetByServerIDFn(ctx, serverID)
	}
	return nil, nil
}

func (m *mockChannelRepo) Update(ctx context.Context, channel *models.Channel) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, channel)
	}
	return nil
}

func (m *mockChannelRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockMemberRepo implements database.MemberRepository.
type mockMemberRepo struct {
	CreateFn             func(ctx context.Context, member *models.Member) error
	GetByServerAndUserFn func(ctx context.Context, serverID, userID int64) (*models.Member, error)
	GetByServerIDFn      func(ctx context.Context, serverID int64) ([]models.Member, error)
	ListUserIDsFn        func(ctx context.Context, serverID int64) ([]int64, error)
	UpdateFn             func(ctx context.Context, member *models.Member) error
	DeleteFn             func(ctx context.Context, serverID, userID int64) error
	AddRoleFn            func(ctx context.Context, serverID, userID, roleID int64) error
	RemoveRoleFn         func(ctx context.Context, serverID, userID, roleID int64) error
}

func (m *mockMemberRepo) Create(ctx context.Context, member *models.Member) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, member)
	}
	return nil
}

func (m *mockMemberRepo) GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Member, error) {
	if m.GetByServerAndUserFn != nil {
		return m.GetByServerAndUserFn(ctx, serverID, userID)
	}
	return nil, nil
}

func (m *mockMemberRepo) GetByServerID(ctx context.Context, serverID int64) ([]models.Member, error) {
	if m.GetByServerIDFn != nil {
		return m.GetByServerIDFn(ctx, serverID)
	}
	return nil, nil
}

func (m *mockMemberRepo) ListUserIDs(ctx context.Context, serverID int64) ([]int64, error) {
	if m.ListUserIDsFn != nil {
		return m.ListUserIDsFn(ctx, serverID)
	}
	return nil, nil
}

func (m *mockMemberRepo) Update(ctx context.Context, member *models.Member) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, member)
	}
	return nil
}

func (m *mockMemberRepo) Delete(ctx context.Context, serverID, userID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, serverID, userID)
	}
	return nil
}

func (m *mockMemberRepo) AddRole(ctx context.Context, serverID, userID, roleID int64) error {
	if m.AddRoleFn != nil {
		return m.AddRoleFn(ctx, serverID, userID, roleID)
	}
	return nil
}

func (m *mockMemberRepo) RemoveRole(ctx context.Context, serverID, userID, roleID int64) error {
	if m.RemoveRoleFn != nil {
		return m.RemoveRoleFn(ctx, serverID, userID, roleID)
	}
	return nil
}

// mockRoleRepo implements database.RoleRepository.
type mockRoleRepo struct {
	CreateFn        func(ctx context.Context, role *models.Role) error
	GetByIDFn       func(ctx context.Context, id int64) (*models.Role, error)
	GetByServerIDFn func(ctx context.Context, serverID int64) ([]models.Role, error)
	GetByMemberFn   func(ctx context.Context, serverID, userID int64) ([]models.Role, error)
	UpdateFn        func(ctx context.Context, role *models.Role) error
	DeleteFn        func(ctx context.Context, id int64) error
}

func (m *mockRoleRepo) Create(ctx context.Context, role *models.Role) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, role)
	}
	return nil
}

func (m *mockRoleRepo) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRoleRepo) GetByServerID(ctx context.Context, serverID int64) ([]models.Role, error) {
	if m.GetByServerIDFn != nil {
		return m.GetByServerIDFn(ctx, serverID)
	}
	return nil, nil
}

func (m *mockRoleRepo) GetByMember(ctx context.Context, serverID, userID int64) ([]models.Role, error) {
	if m.GetByMemberFn != nil {
		return m.GetByMemberFn(ctx, serverID, userID)
	}
	return nil, nil
}

func (m *mockRoleRepo) Update(ctx context.Context, role *models.Role) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, role)
	}
	return nil
}

func (m *mockRoleRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockOverrideRepo implements database.ChannelOverrideRepository.
type mockOverrideRepo struct {
	SetFn           func(ctx context.Context, override *models.ChannelOverride) error
	GetByChannelFn  func(ctx context.Context, channelID int64) ([]models.ChannelOverride, error)
	DeleteForRoleFn func(ctx context.Context, channelID, roleID int64) error
	DeleteForUserFn func(ctx context.Context, channelID, userID int64) error
}

func (m *mockOverrideRepo) Set(ctx context.Context, override *models.ChannelOverride) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, override)
	}
	return nil
}

func (m *mockOverrideRepo) GetByChannel(ctx context.Context, channelID int64) ([]models.ChannelOverride, error) {
	if m.GetByChannelFn != nil {
		return m.GetByChannelFn(ctx, channelID)
	}
	return nil, nil
}

func (m *mockOverrideRepo) DeleteForRole(ctx context.Context, channelID, roleID int64) error {
	if m.DeleteForRoleFn != nil {
		return m.DeleteForRoleFn(ctx, channelID, roleID)
	}
	return nil
}

func (m *mockOverrideRepo) DeleteForUser(ctx context.Context, channelID, userID int64) error {
	if m.DeleteForUserFn != nil {
		return m.DeleteForUserFn(ctx, channelID, userID)
	}
	return nil
}

// mockMessageRepo implements database.MessageRepository.
type mockMessageRepo struct {
	CreateFn            func(ctx context.Context, message *models.Message) error
	GetByIDFn           func(ctx context.Context, id int64) (*models.Message, error)
	GetByChannelFn      func(ctx context.Context, channelID int64, before int64, limit int) ([]models.MessageWithAuthor, error)
	GetByConversationFn func(ctx context.Context, conversationID int64, before int64, limit int) ([]models.MessageWithAuthor, error)
	UpdateFn            func(ctx context.Context, message *models.Message) error
	DeleteFn            func(ctx context.Context, id int64) error
}

func (m *mockMessageRepo) Create(ctx context.Context, message *models.Message) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, message)
	}
	return nil
}

func (m *mockMessageRepo) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockMessageRepo) GetByChannel(ctx context.Context, channelID int64, before int64, limit int) ([]models.MessageWithAuthor, error) {
	if m.GetByChannelFn != nil {
		return m.GetByChannelFn(ctx, channelID, before, limit)
	}
	return nil, nil
}

func (m *mockMessageRepo) GetByConversation(ctx context.Context, conversationID int64, before int64, limit int) ([]models.MessageWithAuthor, error) {
	if m.GetByConversationFn != nil {
		return m.GetByConversationFn(ctx, conversationID, before, limit)
	}
	return nil, nil
}

func (m *mockMessageRepo) Update(ctx context.Context, message *models.Message) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, message)
	}
	return nil
}

func (m *mockMessageRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockConversationRepo implements database.ConversationRepository.
type mockConversationRepo struct {
	CreateFn            func(ctx context.Context, conv *models.Conversation) error
	GetByIDFn           func(ctx context.Context, id int64) (*models.Conversation, error)
	GetByParticipantsFn func(ctx context.Context, userA, userB int64) (*models.Conversation, error)
	GetByUserFn         func(ctx context.Context, userID int64) ([]models.Conversation, error)
}

func (m *mockConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, conv)
	}
	return nil
}

func (m *mockConversationRepo) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockConversationRepo) GetByParticipants(ctx context.Context, userA, userB int64) (*models.Conversation, error) {
	if m.GetByParticipantsFn != nil {
		return m.GetByParticipantsFn(ctx, userA, userB)
	}
	return nil, nil
}

func (m *mockConversationRepo) GetByUser(ctx context.Context, userID int64) ([]models.Conversation, error) {
	if m.GetByUserFn != nil {
		return m.GetByUserFn(ctx, userID)
	}
	return nil, nil
}

// mockSettingsRepo implements database.NotificationSettingsRepository.
type mockSettingsRepo struct {
	GetFn    func(ctx context.Context, userID int64) (*models.NotificationSettings, error)
	UpsertFn func(ctx context.Context, settings *models.NotificationSettings) error
}

func (m *mockSettingsRepo) Get(ctx context.Context, userID int64) (*models.NotificationSettings, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID)
	}
	defaults := models.DefaultNotificationSettings(userID)
	return &defaults, nil
}

func (m *mockSettingsRepo) Upsert(ctx context.Context, settings *models.NotificationSettings) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, settings)
	}
	return nil
}
