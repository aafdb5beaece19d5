package server

import (
	"encoding/json"
	"io"
	"strings"

	"propmatch/internal/models"
	"propmatch/internal/service"
	"propmatch/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// ListProperties handles GET /api/properties
// @Summary List properties
// @Description All listings newest first, or one builder's listings with builder_id
// @Tags properties
// @Produce json
// @Param builder_id query int false "Only this builder's listings"
// @Success 200 {array} models.Property
// @Router /properties [get]
func (s *Server) ListProperties(c *fiber.Ctx) error {
	builderID, err := optionalUintQuery(c, "builder_id")
	if err != nil {
		return fail(c, err)
	}

	var props []models.Property
	if builderID != nil {
		props, err = s.catalog.ListBuilderProperties(c.UserContext(), *builderID)
	} else {
		props, err = s.catalog.ListProperties(c.UserContext())
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(props)
}

// GetProperty handles GET /api/properties/:id
// @Summary Get a property
// @Tags properties
// @Produce json
// @Param id path int true "Property ID"
// @Success 200 {object} models.Property
// @Failure 404 {object} models.ErrorResponse
// @Router /properties/{id} [get]
func (s *Server) GetProperty(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	p, err := s.catalog.GetProperty(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

// CreateProperty handles POST /api/properties
// @Summary List a property
// @Description JSON body, or multipart with the listing JSON in "data" and an optional "photo" file
// @Tags properties
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param request body service.CreatePropertyInput true "Listing"
// @Success 201 {object} models.Property
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /properties [post]
func (s *Server) CreateProperty(c *fiber.Ctx) error {
	var (
		req   service.CreatePropertyInput
		photo *storage.Photo
	)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := json.Unmarshal([]byte(c.FormValue("data")), &req); err != nil {
			return fail(c, models.NewValidationError("Invalid listing data"))
		}
		p, err := readPhoto(c, "photo")
		if err != nil {
			return fail(c, err)
		}
		photo = p
	} else if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	p, err := s.catalog.CreateProperty(c.UserContext(), session(c), req, photo)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// readPhoto returns the uploaded file under field, or nil when there is none.
func readPhoto(c *fiber.Ctx, field string) (*storage.Photo, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewValidationError("Unreadable photo upload")
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewValidationError("Unreadable photo upload")
	}
	return &storage.Photo{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

// DeleteProperty handles DELETE /api/properties/:id
func (s *Server) DeleteProperty(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.catalog.DeleteProperty(c.UserContext(), session(c), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LockProperty handles POST /api/properties/:id/lock
// @Summary Lock a property for negotiation
// @Description Ties the listing to the caller. The exclusivity agreement must be accepted.
// @Tags properties
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Property ID"
// @Param request body object{agreement_accepted=bool} true "Agreement"
// @Success 200 {object} models.Property
// @Failure 409 {object} models.ErrorResponse
// @Router /properties/{id}/lock [post]
func (s *Server) LockProperty(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		AgreementAccepted bool `json:"agreement_accepted"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	p, err := s.catalog.LockProperty(c.UserContext(), session(c), id, req.AgreementAccepted)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}
