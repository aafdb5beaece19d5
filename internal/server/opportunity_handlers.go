package server

import (
	"propmatch/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListOpportunities handles GET /api/opportunities
func (s *Server) ListOpportunities(c *fiber.Ctx) error {
	opps, err := s.opportunities.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(opps)
}

// PostOpportunity handles POST /api/opportunities
// @Summary Post a co-investment opportunity
// @Tags opportunities
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.PostOpportunityInput true "Opportunity"
// @Success 201 {object} models.Opportunity
// @Router /opportunities [post]
func (s *Server) PostOpportunity(c *fiber.Ctx) error {
	var req service.PostOpportunityInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	opp, err := s.opportunities.Post(c.UserContext(), session(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(opp)
}

// ListOpportunityComments handles GET /api/opportunities/:id/comments
func (s *Server) ListOpportunityComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.opportunities.ListComments(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(comments)
}

// CommentOnOpportunity handles POST /api/opportunities/:id/comments
func (s *Server) CommentOnOpportunity(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.CommentInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	comment, err := s.opportunities.Comment(c.UserContext(), session(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// MessageOpportunityCreator handles POST /api/opportunities/:id/message
func (s *Server) MessageOpportunityCreator(c *fiber.Ctx) error {
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
	res, err := s.opportunities.MessageCreator(c.UserContext(), session(c), id, req.Message)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}
