package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"propmatch/internal/cache"
	"propmatch/internal/middleware"
	"propmatch/internal/models"
	"propmatch/internal/repository"
	"propmatch/internal/storage"
	"propmatch/internal/validation"
)

// PhotoUploader stores a listing photo and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, p storage.Photo) (string, error)
}

type CatalogService struct {
	properties repository.PropertyRepository
	photos     PhotoUploader
	listTTL    time.Duration
	now        func() time.Time
}

type CreatePropertyInput struct {
	Type              string   `json:"type" validate:"notblank,max=50"`
	Title             string   `json:"title" validate:"notblank,max=200"`
	Description       string   `json:"description" validate:"notblank"`
	Price             *float64 `json:"price" validate:"required,gt=0"`
	Status            string   `json:"status" validate:"max=30"`
	AddressProvince   string   `json:"address_province" validate:"max=50"`
	AddressCity       string   `json:"address_city" validate:"max=100"`
	AddressStreet     string   `json:"address_street" validate:"max=200"`
	AddressStreetNum  string   `json:"address_street_num" validate:"max=20"`
	AddressPostalCode string   `json:"address_postal_code" validate:"max=20"`
	AddressUnit       string   `json:"address_unit" validate:"max=20"`
	Bedrooms          *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms         *int     `json:"bathrooms" validate:"omitempty,gte=0"`
	Size              *int     `json:"size" validate:"omitempty,gte=0"`
	Amenities         []string `json:"amenities" validate:"dive,notblank,max=100"`
	AvailableDate     string   `json:"available_date" validate:"omitempty,datetime=2006-01-02"`
}

// NewCatalogService builds the catalog. listTTL <= 0 uses cache.ListTTL.
func NewCatalogService(properties repository.PropertyRepository, photos PhotoUploader, listTTL time.Duration) *CatalogService {
	if listTTL <= 0 {
		listTTL = cache.ListTTL
	}
	return &CatalogService{
		properties: properties,
		photos:     photos,
		listTTL:    listTTL,
		now:        time.Now,
	}
}

// ListProperties returns every listing, newest first.
func (s *CatalogService) ListProperties(ctx context.Context) ([]models.Property, error) {
	var out []models.Property
	err := cache.Aside(ctx, cache.PropertyListKey(ctx), &out, s.listTTL, func() error {
		list, err := s.properties.List(ctx)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Property{}
	}
	return out, nil
}

// ListBuilderProperties returns the builder's own listings, newest first.
func (s *CatalogService) ListBuilderProperties(ctx context.Context, builderID uint) ([]models.Property, error) {
	var out []models.Property
	err := cache.Aside(ctx, cache.BuilderPropertiesKey(ctx, builderID), &out, s.listTTL, func() error {
		list, err := s.properties.ListByBuilder(ctx, builderID)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Property{}
	}
	return out, nil
}

func (s *CatalogService) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	var out models.Property
	err := cache.Aside(ctx, cache.PropertyKey(id), &out, cache.PropertyTTL, func() error {
		p, err := s.properties.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProperty uploads the photo first, when there is one, and only then
// inserts the listing. A failed upload leaves nothing behind.
func (s *CatalogService) CreateProperty(ctx context.Context, builder models.Session, in CreatePropertyInput, photo *storage.Photo) (*models.Property, error) {
	if !builder.IsBuilder() && !builder.IsAdmin() {
		return nil, models.NewForbiddenError("Only builders can list properties")
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Type = strings.TrimSpace(in.Type)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var photoURL string
	if photo != nil {
		if s.photos == nil {
			return nil, models.NewInternalError(fmt.Errorf("photo storage is not configured"))
		}
		url, err := s.photos.Upload(ctx, *photo)
		if err != nil {
			return nil, err
		}
		photoURL = url
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.PropertyStatusActive
	}
	builderID := builder.UserID
	property := &models.Property{
		Title:             in.Title,
		Description:       in.Description,
		Price:             in.Price,
		Type:              in.Type,
		Status:            status,
		BuilderID:         &builderID,
		BuilderName:       builder.Email,
		AddressProvince:   in.AddressProvince,
		AddressCity:       in.AddressCity,
		AddressStreet:     in.AddressStreet,
		AddressStreetNum:  in.AddressStreetNum,
		AddressPostalCode: in.AddressPostalCode,
		AddressUnit:       in.AddressUnit,
		Bedrooms:          in.Bedrooms,
		Bathrooms:         in.Bathrooms,
		Size:              in.Size,
		Amenities:         in.Amenities,
		PhotoURL:          photoURL,
		AvailableDate:     in.AvailableDate,
	}
	if err := s.properties.Create(ctx, property); err != nil {
		if photoURL != "" {
			middleware.Logger.WarnContext(ctx, "property insert failed after photo upload", "photo_url", photoURL, "error", err)
		}
		return nil, err
	}

	cache.InvalidatePropertyLists(ctx)
	return property, nil
}

// LockProperty ties the property to the caller for exclusive negotiation. The
// caller must accept the exclusivity agreement. Locks are never released:
// relocking by the holder is a no-op and anyone else gets a conflict.
func (s *CatalogService) LockProperty(ctx context.Context, session models.Session, id uint, agreementAccepted bool) (*models.Property, error) {
	if !agreementAccepted {
		return nil, models.NewValidationError("The negotiation exclusivity agreement must be accepted")
	}

	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property.IsBuilder(session.UserID) {
		return nil, models.NewForbiddenError("Builders cannot lock their own listing")
	}
	if property.IsLocked() {
		if *property.LockedBy == session.UserID {
			return property, nil
		}
		return nil, models.NewConflictError("Property is already locked by another buyer")
	}

	set, err := s.properties.Lock(ctx, id, session.UserID, session.Email, s.now())
	if err != nil {
		return nil, err
	}

	cache.InvalidateProperty(ctx, id)

	locked, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !set && (locked.LockedBy == nil || *locked.LockedBy != session.UserID) {
		return nil, models.NewConflictError("Property is already locked by another buyer")
	}
	return locked, nil
}

// DeleteProperty hard-deletes a listing. Only its builder or an admin may.
func (s *CatalogService) DeleteProperty(ctx context.Context, session models.Session, id uint) error {
	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !property.IsBuilder(session.UserID) && !session.IsAdmin() {
		return models.NewForbiddenError("Only the listing's builder can delete it")
	}
	if err := s.properties.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateProperty(ctx, id)
	return nil
}
