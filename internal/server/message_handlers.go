package server

import (
	"fmt"

	"propmatch/internal/models"

	"github.com/gofiber/fiber/v2"
)

type sendMessageRequest struct {
	Message string `json:"message"`
}

// getThread serves a full thread snapshot, oldest first.
func (s *Server) getThread(c *fiber.Ctx, scope models.ThreadScope) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	msgs, err := s.messaging.FetchThread(c.UserContext(), session(c), models.Thread{Scope: scope, ID: id})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(msgs)
}

func (s *Server) sendToThread(c *fiber.Ctx, scope models.ThreadScope) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req sendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	msg, err := s.messaging.SendMessage(c.UserContext(), session(c), models.Thread{Scope: scope, ID: id}, req.Message)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetGroupMessages handles GET /api/groups/:id/messages
// @Summary Co-investment group thread
// @Tags messages
// @Security BearerAuth
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {array} models.ThreadMessage
// @Router /groups/{id}/messages [get]
func (s *Server) GetGroupMessages(c *fiber.Ctx) error {
	return s.getThread(c, models.ThreadScopeGroup)
}

// SendGroupMessage handles POST /api/groups/:id/messages
func (s *Server) SendGroupMessage(c *fiber.Ctx) error {
	return s.sendToThread(c, models.ThreadScopeGroup)
}

// GetPropertyChat handles GET /api/properties/:id/chat
func (s *Server) GetPropertyChat(c *fiber.Ctx) error {
	return s.getThread(c, models.ThreadScopeProperty)
}

// SendPropertyChat handles POST /api/properties/:id/chat
func (s *Server) SendPropertyChat(c *fiber.Ctx) error {
	return s.sendToThread(c, models.ThreadScopeProperty)
}

// GetConversationMessages handles GET /api/conversations/:id/messages
func (s *Server) GetConversationMessages(c *fiber.Ctx) error {
	return s.getThread(c, models.ThreadScopeConversation)
}

// SendConversationMessage handles POST /api/conversations/:id/messages
// @Summary Send a message into a conversation
// @Tags messages
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Conversation ID"
// @Param request body object{message=string} true "Message"
// @Success 201 {object} models.ThreadMessage
// @Failure 403 {object} models.ErrorResponse
// @Router /conversations/{id}/messages [post]
func (s *Server) SendConversationMessage(c *fiber.Ctx) error {
	return s.sendToThread(c, models.ThreadScopeConversation)
}

// DirectMessageBuilder handles POST /api/properties/:id/direct
// @Summary Message a listing's builder
// @Description Opens the property's one-to-one conversation and posts the message when one is given
// @Tags messages
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Property ID"
// @Param request body object{message=string} false "Opening message"
// @Success 200 {object} service.DirectMessageResult
// @Router /properties/{id}/direct [post]
func (s *Server) DirectMessageBuilder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req sendMessageRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return fail(c, err)
		}
	}
	res, err := s.messaging.DirectMessageBuilder(c.UserContext(), session(c), id, req.Message)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

type contactRequest struct {
	UserID uint `json:"user_id"`
}

// conversationLink carries the conversation and the messenger deep link that selects it.
type conversationLink struct {
	Conversation *models.Conversation `json:"conversation"`
	Link         string               `json:"link"`
}

func newConversationLink(conv *models.Conversation) conversationLink {
	return conversationLink{Conversation: conv, Link: fmt.Sprintf("/messenger?conversationId=%d", conv.ID)}
}

// JoinPropertyGroupChat handles POST /api/properties/:id/group-chat
// @Summary Join a property's group chat
// @Tags messages
// @Security BearerAuth
// @Produce json
// @Param id path int true "Property ID"
// @Success 200 {object} conversationLink
// @Failure 409 {object} models.ErrorResponse
// @Router /properties/{id}/group-chat [post]
func (s *Server) JoinPropertyGroupChat(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	conv, err := s.messaging.JoinPropertyGroupChat(c.UserContext(), session(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(newConversationLink(conv))
}

// ContactUser handles POST /api/properties/:id/contact
func (s *Server) ContactUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req contactRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	conv, err := s.messaging.ContactUser(c.UserContext(), session(c), id, req.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(newConversationLink(conv))
}

// ListConversations handles GET /api/conversations
func (s *Server) ListConversations(c *fiber.Ctx) error {
	convs, err := s.messaging.ListConversations(c.UserContext(), session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(convs)
}

// GetConversation handles GET /api/conversations/:id
func (s *Server) GetConversation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	conv, err := s.messaging.GetConversation(c.UserContext(), session(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(conv)
}
