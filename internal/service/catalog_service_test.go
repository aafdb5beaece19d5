package service

import (
	"context"
	"testing"
	"time"

	"propmatch/internal/models"
	"propmatch/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validListing() CreatePropertyInput {
	return CreatePropertyInput{
		Type:        "condo",
		Title:       "Harbourfront two-bed",
		Description: "Corner unit with lake view",
		Price:       ptrFloat(650000),
		Amenities:   []string{"gym", "concierge"},
	}
}

func TestCatalogService_CreateProperty(t *testing.T) {
	var created *models.Property
	repo := &propertyRepoStub{createFn: func(_ context.Context, p *models.Property) error {
		p.ID = 11
		created = p
		return nil
	}}
	photos := &photoUploaderStub{url: "/uploads/property-images/1-abc.jpg"}
	svc := NewCatalogService(repo, photos, 0)

	p, err := svc.CreateProperty(context.Background(), builder(3), validListing(), &storage.Photo{Filename: "a.jpg", Content: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, uint(11), p.ID)
	assert.Equal(t, "/uploads/property-images/1-abc.jpg", created.PhotoURL)
	assert.Equal(t, models.PropertyStatusActive, created.Status)
	require.NotNil(t, created.BuilderID)
	assert.Equal(t, uint(3), *created.BuilderID)
	assert.Equal(t, emailFor(3), created.BuilderName)
	assert.Equal(t, []string{"gym", "concierge"}, []string(created.Amenities))
}

func TestCatalogService_CreateProperty_PhotoFailureAborts(t *testing.T) {
	inserted := false
	repo := &propertyRepoStub{createFn: func(context.Context, *models.Property) error {
		inserted = true
		return nil
	}}
	photos := &photoUploaderStub{err: models.NewValidationError("Invalid image file")}
	svc := NewCatalogService(repo, photos, 0)

	_, err := svc.CreateProperty(context.Background(), builder(3), validListing(), &storage.Photo{Content: []byte("nope")})
	assertValidationError(t, err)
	assert.Equal(t, 1, photos.calls)
	assert.False(t, inserted, "no row may be written when the upload fails")
}

func TestCatalogService_CreateProperty_Validation(t *testing.T) {
	repo := &propertyRepoStub{createFn: func(context.Context, *models.Property) error {
		t.Fatal("create must not be called")
		return nil
	}}
	svc := NewCatalogService(repo, nil, 0)
	ctx := context.Background()

	missingTitle := validListing()
	missingTitle.Title = "   "
	_, err := svc.CreateProperty(ctx, builder(1), missingTitle, nil)
	assertValidationError(t, err)

	zeroPrice := validListing()
	zeroPrice.Price = ptrFloat(0)
	_, err = svc.CreateProperty(ctx, builder(1), zeroPrice, nil)
	assertValidationError(t, err)

	noPrice := validListing()
	noPrice.Price = nil
	_, err = svc.CreateProperty(ctx, builder(1), noPrice, nil)
	assertValidationError(t, err)

	_, err = svc.CreateProperty(ctx, seeker(2), validListing(), nil)
	assertCode(t, err, models.CodeForbidden)
}

func TestCatalogService_LockProperty(t *testing.T) {
	builderID := uint(1)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	newSvc := func(p *models.Property) (*CatalogService, *int) {
		lockCalls := 0
		repo := &propertyRepoStub{
			getByIDFn: fixedProperty(p),
			lockFn: func(_ context.Context, id, userID uint, email string, at time.Time) (bool, error) {
				lockCalls++
				if p.LockedBy != nil {
					return false, nil
				}
				p.LockedBy = &userID
				p.LockedByEmail = email
				p.LockedAt = &at
				p.LockAgreementAccepted = true
				return true, nil
			},
		}
		svc := NewCatalogService(repo, nil, 0)
		svc.now = func() time.Time { return now }
		return svc, &lockCalls
	}

	t.Run("requires agreement", func(t *testing.T) {
		svc, calls := newSvc(&models.Property{ID: 5, BuilderID: &builderID})
		_, err := svc.LockProperty(context.Background(), seeker(2), 5, false)
		assertValidationError(t, err)
		assert.Zero(t, *calls)
	})

	t.Run("locks and is idempotent for the holder", func(t *testing.T) {
		p := &models.Property{ID: 5, BuilderID: &builderID}
		svc, calls := newSvc(p)

		locked, err := svc.LockProperty(context.Background(), seeker(2), 5, true)
		require.NoError(t, err)
		require.NotNil(t, locked.LockedBy)
		assert.Equal(t, uint(2), *locked.LockedBy)
		assert.Equal(t, emailFor(2), locked.LockedByEmail)
		assert.True(t, locked.LockAgreementAccepted)
		assert.True(t, now.Equal(*locked.LockedAt))

		again, err := svc.LockProperty(context.Background(), seeker(2), 5, true)
		require.NoError(t, err)
		assert.Equal(t, uint(2), *again.LockedBy)
		assert.Equal(t, 1, *calls)
	})

	t.Run("another buyer cannot take the lock", func(t *testing.T) {
		holder := uint(2)
		p := &models.Property{ID: 5, BuilderID: &builderID, LockedBy: &holder}
		svc, _ := newSvc(p)

		_, err := svc.LockProperty(context.Background(), seeker(3), 5, true)
		assertCode(t, err, models.CodeConflict)
		assert.Equal(t, uint(2), *p.LockedBy, "lock is monotonic")
	})

	t.Run("builder cannot lock own listing", func(t *testing.T) {
		svc, _ := newSvc(&models.Property{ID: 5, BuilderID: &builderID})
		_, err := svc.LockProperty(context.Background(), builder(1), 5, true)
		assertCode(t, err, models.CodeForbidden)
	})

	t.Run("lost race reports conflict", func(t *testing.T) {
		p := &models.Property{ID: 5, BuilderID: &builderID}
		other := uint(9)
		repo := &propertyRepoStub{
			getByIDFn: fixedProperty(p),
			lockFn: func(context.Context, uint, uint, string, time.Time) (bool, error) {
				p.LockedBy = &other
				return false, nil
			},
		}
		svc := NewCatalogService(repo, nil, 0)
		_, err := svc.LockProperty(context.Background(), seeker(2), 5, true)
		assertCode(t, err, models.CodeConflict)
	})
}

func TestCatalogService_DeleteProperty(t *testing.T) {
	builderID := uint(1)
	deleted := false
	repo := &propertyRepoStub{
		getByIDFn: fixedProperty(&models.Property{ID: 5, BuilderID: &builderID}),
		deleteFn: func(_ context.Context, id uint) error {
			deleted = id == 5
			return nil
		},
	}
	svc := NewCatalogService(repo, nil, 0)

	err := svc.DeleteProperty(context.Background(), seeker(2), 5)
	assertCode(t, err, models.CodeForbidden)
	assert.False(t, deleted)

	require.NoError(t, svc.DeleteProperty(context.Background(), builder(1), 5))
	assert.True(t, deleted)

	err = svc.DeleteProperty(context.Background(), builder(1), 99)
	assertCode(t, err, models.CodeNotFound)
}

func TestCatalogService_ListPropertiesNeverNil(t *testing.T) {
	repo := &propertyRepoStub{listFn: func(context.Context) ([]models.Property, error) { return nil, nil }}
	svc := NewCatalogService(repo, nil, 0)

	list, err := svc.ListProperties(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	repo.listFn = func(context.Context) ([]models.Property, error) { return nil, errBoom }
	_, err = svc.ListProperties(context.Background())
	assert.ErrorIs(t, err, errBoom, "fetch failures are surfaced, not rendered as an empty list")
}
