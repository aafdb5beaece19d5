package server

import (
	"propmatch/internal/models"

	"github.com/gofiber/fiber/v2"
)

func wizardName(c *fiber.Ctx) models.WizardName {
	return models.WizardName(c.Params("name"))
}

// GetWizard handles GET /api/wizards/:name
// @Summary Resume a wizard
// @Description Returns the saved step and answers. Scoped wizards (interest, group) take property_id.
// @Tags wizards
// @Security BearerAuth
// @Produce json
// @Param name path string true "profile, listing, interest or group"
// @Param property_id query int false "Property the wizard targets"
// @Success 200 {object} service.WizardState
// @Router /wizards/{name} [get]
func (s *Server) GetWizard(c *fiber.Ctx) error {
	scopeID, err := optionalUintQuery(c, "property_id")
	if err != nil {
		return fail(c, err)
	}
	state, err := s.wizards.Get(c.UserContext(), session(c), wizardName(c), scopeID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

// SaveWizardStep handles PUT /api/wizards/:name/steps/:step
// @Summary Save one wizard step
// @Tags wizards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param name path string true "Wizard"
// @Param step path int true "1-based step"
// @Param property_id query int false "Property the wizard targets"
// @Param request body object true "Step answers"
// @Success 200 {object} service.WizardState
// @Failure 400 {object} models.ErrorResponse
// @Router /wizards/{name}/steps/{step} [put]
func (s *Server) SaveWizardStep(c *fiber.Ctx) error {
	step, err := c.ParamsInt("step")
	if err != nil {
		return fail(c, models.NewValidationError("Invalid step"))
	}
	scopeID, err := optionalUintQuery(c, "property_id")
	if err != nil {
		return fail(c, err)
	}
	data := map[string]any{}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &data); err != nil {
			return fail(c, err)
		}
	}

	state, err := s.wizards.SaveStep(c.UserContext(), session(c), wizardName(c), step, scopeID, data)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

// WizardBack handles POST /api/wizards/:name/back
func (s *Server) WizardBack(c *fiber.Ctx) error {
	state, err := s.wizards.Back(c.UserContext(), session(c), wizardName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

// CompleteWizard handles POST /api/wizards/:name/complete
func (s *Server) CompleteWizard(c *fiber.Ctx) error {
	res, err := s.wizards.Complete(c.UserContext(), session(c), wizardName(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// DiscardWizard handles DELETE /api/wizards/:name
func (s *Server) DiscardWizard(c *fiber.Ctx) error {
	if err := s.wizards.Discard(c.UserContext(), session(c), wizardName(c)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
