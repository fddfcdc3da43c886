package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mvasilev/concord/internal/database"
	"github.com/mvasilev/concord/internal/gateway"
	"github.com/mvasilev/concord/internal/models"
	"github.com/mvasilev/concord/internal/notify"
	"github.com/mvasilev/concord/internal/permissions"
	"github.com/mvasilev/concord/internal/snowflake"
)

var mentionPattern = regexp.MustCompile(`<@(\d+)>`)

// MessageService handles message business logic for both server channels
// and direct conversations.
type MessageService struct {
	messages      database.MessageRepository
	channels      database.ChannelRepository
	conversations database.ConversationRepository
	members       database.MemberRepository
	users         database.UserRepository
	snowflake     *snowflake.Generator
	gateway       gateway.Dispatcher
	perms         *PermissionChecker
}

// NewMessageService creates a MessageService.
func NewMessageService(
	messages database.MessageRepository,
	channels database.ChannelRepository,
	conversations database.ConversationRepository,
	members database.MemberRepository,
	users database.UserRepository,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
	perms *PermissionChecker,
) *MessageService {
	return &MessageService{
		messages:      messages,
		channels:      channels,
		conversations: conversations,
		members:       members,
		users:         users,
		snowflake:     sf,
		gateway:       gw,
		perms:         perms,
	}
}

// SendChannelMessage creates a message in a server channel and fans it out
// to every member with per-recipient delivery flags.
func (s *MessageService) SendChannelMessage(ctx context.Context, channelID, userID int64, content string) (*models.Message, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if channel == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}
	if err := s.perms.RequireChannelPermission(ctx, channel.ServerID, channelID, userID, permissions.SendMessages); err != nil {
		return nil, err
	}
	if len(content) == 0 || len(content) > 2000 {
		return nil, BadRequest("INVALID_CONTENT", "message content must be 1-2000 characters")
	}

	recipients, err := s.members.ListUserIDs(ctx, channel.ServerID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	mentions := s.resolveMentions(ctx, channel.ServerID, userID, content, recipients)

	msg := &models.Message{
		ID:        s.snowflake.Generate().Int64(),
		ChannelID: channelID,
		AuthorID:  userID,
		Content:   content,
		Mentions:  mentions,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchMessage(recipients, userID, notify.ChannelContext(channelID, channel.ServerID), mentions, msg)
	return msg, nil
}

// SendDirectMessage creates a message in a conversation, creating the
// conversation on first contact.
func (s *MessageService) SendDirectMessage(ctx context.Context, senderID, recipientID int64, content string) (*models.Message, error) {
	if senderID == recipientID {
		return nil, BadRequest("INVALID_RECIPIENT", "cannot message yourself")
	}
	if len(content) == 0 || len(content) > 2000 {
		return nil, BadRequest("INVALID_CONTENT", "message content must be 1-2000 characters")
	}

	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if recipient == nil {
		return nil, NotFound("NOT_FOUND", "user not found")
	}

	conv, err := s.conversations.GetByParticipants(ctx, senderID, recipientID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if conv == nil {
		conv = &models.Conversation{
			ID:        s.snowflake.Generate().Int64(),
			UserA:     senderID,
			UserB:     recipientID,
			CreatedAt: time.Now(),
		}
		if conv.UserA > conv.UserB {
			conv.UserA, conv.UserB = conv.UserB, conv.UserA
		}
		if err := s.conversations.Create(ctx, conv); err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
	}

	msg := &models.Message{
		ID:             s.snowflake.Generate().Int64(),
		ConversationID: conv.ID,
		AuthorID:       senderID,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.gateway.DispatchMessage([]int64{conv.UserA, conv.UserB}, senderID, notify.ConversationContext(conv.ID), nil, msg)
	return msg, nil
}

// GetChannelMessages returns channel history with cursor pagination.
func (s *MessageService) GetChannelMessages(ctx context.Context, channelID, userID int64, before int64, limit int) ([]models.MessageWithAuthor, error) {
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

	messages, err := s.messages.GetByChannel(ctx, channelID, before, clampLimit(limit))
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if messages == nil {
		messages = []models.MessageWithAuthor{}
	}
	return messages, nil
}

// GetConversationMessages returns conversation history for a participant.
func (s *MessageService) GetConversationMessages(ctx context.Context, conversationID, userID int64, before int64, limit int) ([]models.MessageWithAuthor, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if conv == nil || !conv.Includes(userID) {
		return nil, NotFound("NOT_FOUND", "conversation not found")
	}

	messages, err := s.messages.GetByConversation(ctx, conversationID, before, clampLimit(limit))
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if messages == nil {
		messages = []models.MessageWithAuthor{}
	}
	return messages, nil
}

// ListConversations returns the user's conversations.
func (s *MessageService) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	convs, err := s.conversations.GetByUser(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	return convs, nil
}

// EditMessage edits a message. Only the author can edit; mentions are
// re-resolved against the new content.
func (s *MessageService) EditMessage(ctx context.Context, msgID, userID int64, content string) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, msgID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if msg == nil {
		return nil, NotFound("NOT_FOUND", "message not found")
	}
	if msg.AuthorID != userID {
		return nil, Forbidden("FORBIDDEN", "you can only edit your own messages")
	}
	if len(content) == 0 || len(content) > 2000 {
		return nil, BadRequest("INVALID_CONTENT", "message content must be 1-2000 characters")
	}

	msg.Content = content
	now := time.Now()
	msg.EditedAt = &now
	if msg.ChannelID != 0 {
		channel, err := s.channels.GetByID(ctx, msg.ChannelID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if channel != nil {
			recipients, err := s.members.ListUserIDs(ctx, channel.ServerID)
			if err == nil {
				msg.Mentions = s.resolveMentions(ctx, channel.ServerID, userID, content, recipients)
			}
		}
	}

	if err := s.messages.Update(ctx, msg); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.dispatchUpdate(ctx, msg, gateway.EventMessageUpdate, msg)
	return msg, nil
}

// DeleteMessage deletes a message. The author can always delete their own;
// in a channel, manageMessages allows deleting others' messages.
func (s *MessageService) DeleteMessage(ctx context.Context, msgID, userID int64) error {
	msg, err := s.messages.GetByID(ctx, msgID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if msg == nil {
		return NotFound("NOT_FOUND", "message not found")
	}

	if msg.AuthorID != userID {
		if msg.ChannelID == 0 {
			return Forbidden("FORBIDDEN", "you can only delete your own messages")
		}
		channel, err := s.channels.GetByID(ctx, msg.ChannelID)
		if err != nil {
			return Internal("INTERNAL", "internal server error")
		}
		if channel == nil {
			return NotFound("NOT_FOUND", "message not found")
		}
		if err := s.perms.RequireChannelPermission(ctx, channel.ServerID, msg.ChannelID, userID, permissions.ManageMessages); err != nil {
			return err
		}
	}

	if err := s.messages.Delete(ctx, msgID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.dispatchUpdate(ctx, msg, gateway.EventMessageDelete, map[string]any{"id": msgID, "channel_id": msg.ChannelID, "conversation_id": msg.ConversationID})
	return nil
}

// dispatchUpdate routes an edit or delete event to the message's audience.
func (s *MessageService) dispatchUpdate(ctx context.Context, msg *models.Message, event string, data any) {
	if msg.ChannelID != 0 {
		channel, err := s.channels.GetByID(ctx, msg.ChannelID)
		if err != nil || channel == nil {
			return
		}
		s.gateway.DispatchToServer(channel.ServerID, event, data)
		return
	}
	conv, err := s.conversations.GetByID(ctx, msg.ConversationID)
	if err != nil || conv == nil {
		return
	}
	s.gateway.DispatchToUser(conv.UserA, event, data)
	s.gateway.DispatchToUser(conv.UserB, event, data)
}

// resolveMentions extracts <@id> mentions limited to server members. An
// @everyone in the content mentions every member when the author holds the
// mentionEveryone permission; without it the token is plain text.
func (s *MessageService) resolveMentions(ctx context.Context, serverID, authorID int64, content string, memberIDs []int64) []int64 {
	members := make(map[int64]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}

	if strings.Contains(content, "@everyone") {
		if err := s.perms.RequireServerPermission(ctx, serverID, authorID, permissions.MentionEveryone); err == nil {
			all := make([]int64, 0, len(memberIDs))
			for _, id := range memberIDs {
				if id != authorID {
					all = append(all, id)
				}
			}
			return all
		}
	}

	seen := map[int64]bool{}
	var mentions []int64
	for _, m := range mentionPattern.FindAllStringSubmatch(content, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || !members[id] || seen[id] {
			continue
		}
		seen[id] = true
		mentions = append(mentions, id)
	}
	return mentions
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
