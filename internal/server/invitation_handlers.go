package server

import (
	"propmatch/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Invite handles POST /api/properties/:id/invitations
// @Summary Invite a user into the property group chat
// @Description Returns 201 for a new invitation and 200 when one is already pending
// @Tags invitations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Property ID"
// @Param request body service.InviteInput true "Invitee by id or email"
// @Success 201 {object} models.GroupInvitation
// @Success 200 {object} models.GroupInvitation
// @Failure 409 {object} models.ErrorResponse
// @Router /properties/{id}/invitations [post]
func (s *Server) Invite(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.InviteInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	inv, created, err := s.invitations.Invite(c.UserContext(), session(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(inv)
}

// ListInvitations handles GET /api/invitations
// @Summary Pending invitations
// @Description Lists the caller's pending invitations and marks them read
// @Tags invitations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.PendingInvitations
// @Router /invitations [get]
func (s *Server) ListInvitations(c *fiber.Ctx) error {
	pending, err := s.invitations.ListPending(c.UserContext(), session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pending)
}

// UnreadInvitations handles GET /api/invitations/unread-count
func (s *Server) UnreadInvitations(c *fiber.Ctx) error {
	n, err := s.invitations.UnreadCount(c.UserContext(), session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// AcceptInvitation handles POST /api/invitations/:id/accept
func (s *Server) AcceptInvitation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	inv, err := s.invitations.Accept(c.UserContext(), session(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(inv)
}

// DeclineInvitation handles POST /api/invitations/:id/decline
func (s *Server) DeclineInvitation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	inv, err := s.invitations.Decline(c.UserContext(), session(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(inv)
}
