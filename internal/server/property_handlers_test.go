package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"propmatch/internal/models"
	"propmatch/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPropertyRepository is a mock of the PropertyRepository interface
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) List(ctx context.Context) ([]models.Property, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyRepository) ListByBuilder(ctx context.Context, builderID uint) ([]models.Property, error) {
	args := m.Called(ctx, builderID)
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) Lock(ctx context.Context, id, userID uint, email string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, userID, email, at)
	return args.Bool(0), args.Error(1)
}

// catalogApp wires the property handlers behind a fake auth step that installs sess.
func catalogApp(repo *MockPropertyRepository, sess models.Session) *fiber.App {
	s := &Server{catalog: service.NewCatalogService(repo, nil, 0)}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("session", sess)
		return c.Next()
	})
	app.Get("/properties", s.ListProperties)
	app.Get("/properties/:id", s.GetProperty)
	app.Post("/properties", s.CreateProperty)
	app.Post("/properties/:id/lock", s.LockProperty)
	app.Delete("/properties/:id", s.DeleteProperty)
	return app
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func ptrUint(v uint) *uint { return &v }

func TestCreateProperty(t *testing.T) {
	price := 450000.0
	valid := map[string]any{
		"type":        "Condo",
		"title":       "Harbour view two-bed",
		"description": "Corner unit, south facing",
		"price":       price,
		"amenities":   []string{"gym", "pool"},
	}

	tests := []struct {
		name           string
		session        models.Session
		body           map[string]any
		mockSetup      func(*MockPropertyRepository)
		expectedStatus int
	}{
		{
			name:    "Builder creates listing",
			session: models.Session{UserID: 7, Email: "builder@example.com", Role: models.RoleBuilder},
			body:    valid,
			mockSetup: func(m *MockPropertyRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Property) bool {
					return p.BuilderID != nil && *p.BuilderID == 7 &&
						p.BuilderName == "builder@example.com" &&
						p.Status == models.PropertyStatusActive
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*models.Property).ID = 11
				}).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Seeker is forbidden",
			session:        models.Session{UserID: 3, Email: "seeker@example.com", Role: models.RoleSeeker},
			body:           valid,
			mockSetup:      func(*MockPropertyRepository) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:    "Missing price",
			session: models.Session{UserID: 7, Email: "builder@example.com", Role: models.RoleBuilder},
			body: map[string]any{
				"type":        "Condo",
				"title":       "No price",
				"description": "x",
			},
			mockSetup:      func(*MockPropertyRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPropertyRepository)
			tt.mockSetup(repo)
			app := catalogApp(repo, tt.session)

			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/properties", tt.body))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			repo.AssertExpectations(t)

			if tt.expectedStatus == http.StatusCreated {
				var p models.Property
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
				assert.Equal(t, uint(11), p.ID)
				assert.Equal(t, []string{"gym", "pool"}, []string(p.Amenities))
			}
		})
	}
}

func TestGetProperty_NotFound(t *testing.T) {
	repo := new(MockPropertyRepository)
	repo.On("GetByID", mock.Anything, uint(999)).Return(nil, models.NewNotFoundError("Property", 999))
	app := catalogApp(repo, models.Session{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/properties/999", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, models.CodeNotFound, body.Code)
}

func TestListProperties_ByBuilder(t *testing.T) {
	repo := new(MockPropertyRepository)
	repo.On("ListByBuilder", mock.Anything, uint(7)).Return([]models.Property{
		{ID: 2, Title: "Newer", BuilderID: ptrUint(7)},
		{ID: 1, Title: "Older", BuilderID: ptrUint(7)},
	}, nil)
	app := catalogApp(repo, models.Session{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/properties?builder_id=7", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var props []models.Property
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&props))
	require.Len(t, props, 2)
	assert.Equal(t, "Newer", props[0].Title)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestListProperties_EmptyIsArray(t *testing.T) {
	repo := new(MockPropertyRepository)
	repo.On("List", mock.Anything).Return([]models.Property(nil), nil)
	app := catalogApp(repo, models.Session{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/properties", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw))
}

func TestLockProperty(t *testing.T) {
	seeker := models.Session{UserID: 3, Email: "seeker@example.com", Role: models.RoleSeeker}

	t.Run("Agreement required", func(t *testing.T) {
		repo := new(MockPropertyRepository)
		app := catalogApp(repo, seeker)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/properties/5/lock", map[string]bool{"agreement_accepted": false}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		repo.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Locked by someone else", func(t *testing.T) {
		repo := new(MockPropertyRepository)
		repo.On("GetByID", mock.Anything, uint(5)).Return(&models.Property{ID: 5, BuilderID: ptrUint(7), LockedBy: ptrUint(4)}, nil)
		app := catalogApp(repo, seeker)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/properties/5/lock", map[string]bool{"agreement_accepted": true}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Lock acquired", func(t *testing.T) {
		repo := new(MockPropertyRepository)
		repo.On("GetByID", mock.Anything, uint(5)).Return(&models.Property{ID: 5, BuilderID: ptrUint(7)}, nil).Once()
		repo.On("Lock", mock.Anything, uint(5), uint(3), "seeker@example.com", mock.Anything).Return(true, nil)
		repo.On("GetByID", mock.Anything, uint(5)).Return(&models.Property{
			ID: 5, BuilderID: ptrUint(7), LockedBy: ptrUint(3), LockedByEmail: "seeker@example.com", LockAgreementAccepted: true,
		}, nil).Once()
		app := catalogApp(repo, seeker)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/properties/5/lock", map[string]bool{"agreement_accepted": true}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var p models.Property
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
		require.NotNil(t, p.LockedBy)
		assert.Equal(t, uint(3), *p.LockedBy)
		repo.AssertExpectations(t)
	})
}

func TestDeleteProperty_OnlyBuilder(t *testing.T) {
	repo := new(MockPropertyRepository)
	repo.On("GetByID", mock.Anything, uint(5)).Return(&models.Property{ID: 5, BuilderID: ptrUint(7)}, nil)
	repo.On("Delete", mock.Anything, uint(5)).Return(nil)

	resp, err := catalogApp(repo, models.Session{UserID: 8, Role: models.RoleBuilder}).
		Test(httptest.NewRequest(http.MethodDelete, "/properties/5", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	repo.AssertNotCalled(t, "Delete", mock.Anything, uint(5))

	resp, err = catalogApp(repo, models.Session{UserID: 7, Role: models.RoleBuilder}).
		Test(httptest.NewRequest(http.MethodDelete, "/properties/5", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	repo.AssertCalled(t, "Delete", mock.Anything, uint(5))
}
