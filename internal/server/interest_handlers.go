package server

import (
	"propmatch/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitInterest handles POST /api/properties/:id/interests
// @Summary Express interest in a property
// @Tags interests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Property ID"
// @Param request body service.SubmitInterestInput true "Interest"
// @Success 201 {object} models.PropertyInterest
// @Failure 409 {object} models.ErrorResponse
// @Router /properties/{id}/interests [post]
func (s *Server) SubmitInterest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.SubmitInterestInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	interest, err := s.interests.SubmitInterest(c.UserContext(), session(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(interest)
}

// ListInterests handles GET /api/properties/:id/interests
// @Summary Interests recorded on a listing
// @Description Builder-only. Profiles are included for buyers who opted in.
// @Tags interests
// @Security BearerAuth
// @Produce json
// @Param id path int true "Property ID"
// @Success 200 {object} service.InterestList
// @Router /properties/{id}/interests [get]
func (s *Server) ListInterests(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	list, err := s.interests.ListInterests(c.UserContext(), session(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

// ListCandidates handles GET /api/properties/:id/candidates
func (s *Server) ListCandidates(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	candidates, err := s.interests.Candidates(c.UserContext(), session(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(candidates)
}

// CreateGroup handles POST /api/properties/:id/groups
// @Summary Create a co-investment group from interested users
// @Tags groups
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Property ID"
// @Param request body service.CreateGroupInput true "Group"
// @Success 201 {object} models.CoInvestmentGroup
// @Router /properties/{id}/groups [post]
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.CreateGroupInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	group, err := s.interests.CreateGroupFromInterests(c.UserContext(), session(c), id, req)
	if err != nil {
		if group != nil {
			// The group row exists but its members were not added.
			return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
				"group": group,
				"error": "Group created but members could not be added",
			})
		}
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// ListMyGroups handles GET /api/groups
func (s *Server) ListMyGroups(c *fiber.Ctx) error {
	groups, err := s.interests.ListMyGroups(c.UserContext(), session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(groups)
}

// ListMyInterests handles GET /api/interests
func (s *Server) ListMyInterests(c *fiber.Ctx) error {
	interests, err := s.interests.ListMyInterests(c.UserContext(), session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(interests)
}
