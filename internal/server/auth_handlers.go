package server

import (
	"propmatch/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup
// @Summary Account signup
// @Description Register an account as a seeker or builder. The role cannot change later.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "Signup request"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	res, err := s.auth.Signup(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Login handles POST /api/auth/login
// @Summary Account login
// @Description Authenticate and return a JWT carrying the stored role
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login credentials"
// @Success 200 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	res, err := s.auth.Login(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the presented token
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.auth.Logout(c.UserContext(), claimsFrom(c)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me handles GET /api/me
// @Summary Current account
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Router /me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.auth.Me(c.UserContext(), session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// Dashboard handles GET /api/dashboard
// @Summary Role-specific landing summary
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.Dashboard
// @Router /dashboard [get]
func (s *Server) Dashboard(c *fiber.Ctx) error {
	d, err := s.dashboard.Summary(c.UserContext(), session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(d)
}
