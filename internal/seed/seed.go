// Package seed populates a database with demo builders, seekers, listings and
// interests. It goes through the services, so seeded rows obey the same rules
// as rows created over the API.
package seed

import (
	"context"
	"fmt"
	"strings"

	"propmatch/internal/database"
	"propmatch/internal/middleware"
	"propmatch/internal/models"
	"propmatch/internal/repository"
	"propmatch/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls the randomised part of a run.
type Options struct {
	ExtraSeekers    int
	ExtraProperties int
	// RandSeed makes the generated data repeatable. 0 picks a random seed.
	RandSeed int64
}

// Summary counts what a run created.
type Summary struct {
	Users      int
	Properties int
	Interests  int
}

// Seeder writes demo data through the domain services.
type Seeder struct {
	db        *gorm.DB
	auth      *service.AuthService
	catalog   *service.CatalogService
	interests *service.InterestService
	profiles  repository.ProfileRepository
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB) *Seeder {
	properties := repository.NewPropertyRepository(db)
	profiles := repository.NewProfileRepository(db)
	return &Seeder{
		db:       db,
		auth:     service.NewAuthService(repository.NewUserRepository(db), "seed", nil),
		catalog:  service.NewCatalogService(properties, nil, 0),
		profiles: profiles,
		interests: service.NewInterestService(properties, repository.NewInterestRepository(db),
			profiles, repository.NewGroupRepository(db)),
	}
}

// ClearAll deletes every row of every application table.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, model := range database.PersistentModels() {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	middleware.Logger.InfoContext(ctx, "seed: tables cleared")
	return nil
}

// Run creates the fixtures, then the random extras described by opts.
func (s *Seeder) Run(ctx context.Context, fx *Fixtures, opts Options) (*Summary, error) {
	sum := &Summary{}
	sessions := make(map[string]models.Session)

	signup := func(u FixtureUser, role models.Role) error {
		sess, err := s.createUser(ctx, u, role, fx.Password)
		if err != nil {
			return err
		}
		sessions[u.Email] = sess
		sum.Users++
		return nil
	}
	for _, u := range fx.Builders {
		if err := signup(u, models.RoleBuilder); err != nil {
			return sum, err
		}
	}
	for _, u := range fx.Seekers {
		if err := signup(u, models.RoleSeeker); err != nil {
			return sum, err
		}
	}

	byTitle := make(map[string]uint, len(fx.Properties))
	for _, p := range fx.Properties {
		created, err := s.catalog.CreateProperty(ctx, sessions[p.Builder], p.input(), nil)
		if err != nil {
			return sum, fmt.Errorf("seed property %q: %w", p.Title, err)
		}
		byTitle[p.Title] = created.ID
		sum.Properties++
	}

	for _, in := range fx.Interests {
		req := service.SubmitInterestInput{
			Description:     in.Description,
			DisplayRealName: in.DisplayRealName,
			InterestLevel:   models.InterestLevel(in.Level),
		}
		if in.Amount > 0 {
			amount := in.Amount
			req.InvestmentAmount = &amount
		}
		if _, err := s.interests.SubmitInterest(ctx, sessions[in.Seeker], byTitle[in.Property], req); err != nil {
			return sum, fmt.Errorf("seed interest %s -> %q: %w", in.Seeker, in.Property, err)
		}
		sum.Interests++
	}

	if err := s.extras(ctx, fx, opts, sessions, sum); err != nil {
		return sum, err
	}

	middleware.Logger.InfoContext(ctx, "seed: done",
		"users", sum.Users, "properties", sum.Properties, "interests", sum.Interests)
	return sum, nil
}

// extras adds gofakeit listings for the fixture builders and gofakeit seekers
// who each register interest in one listing.
func (s *Seeder) extras(ctx context.Context, fx *Fixtures, opts Options, sessions map[string]models.Session, sum *Summary) error {
	if opts.ExtraProperties <= 0 && opts.ExtraSeekers <= 0 {
		return nil
	}
	faker := gofakeit.New(opts.RandSeed)

	var builders []models.Session
	for _, b := range fx.Builders {
		builders = append(builders, sessions[b.Email])
	}
	var listings []uint
	for i := 0; i < opts.ExtraProperties && len(builders) > 0; i++ {
		p := fakeProperty(faker)
		created, err := s.catalog.CreateProperty(ctx, builders[i%len(builders)], p.input(), nil)
		if err != nil {
			return fmt.Errorf("seed generated property: %w", err)
		}
		listings = append(listings, created.ID)
		sum.Properties++
	}

	levels := []string{
		string(models.InterestLevelInterested),
		string(models.InterestLevelVeryInterested),
		string(models.InterestLevelReadyToInvest),
	}
	for i := 0; i < opts.ExtraSeekers; i++ {
		u := FixtureUser{FirstName: faker.FirstName(), LastName: faker.LastName()}
		u.Email = fmt.Sprintf("%s.%s.%d@example.com", emailPart(u.FirstName), emailPart(u.LastName), i+1)
		sess, err := s.createUser(ctx, u, models.RoleSeeker, fx.Password)
		if err != nil {
			return err
		}
		sum.Users++

		if len(listings) == 0 {
			continue
		}
		amount := float64(faker.Number(10, 200)) * 1000
		req := service.SubmitInterestInput{
			Description:      faker.Sentence(10),
			InterestLevel:    models.InterestLevel(faker.RandomString(levels)),
			InvestmentAmount: &amount,
			DisplayRealName:  faker.Bool(),
		}
		if _, err := s.interests.SubmitInterest(ctx, sess, listings[i%len(listings)], req); err != nil {
			return fmt.Errorf("seed generated interest: %w", err)
		}
		sum.Interests++
	}
	return nil
}

func (s *Seeder) createUser(ctx context.Context, u FixtureUser, role models.Role, password string) (models.Session, error) {
	res, err := s.auth.Signup(ctx, service.SignupInput{Email: u.Email, Password: password, Role: role})
	if err != nil {
		return models.Session{}, fmt.Errorf("seed user %s: %w", u.Email, err)
	}
	sess := models.Session{UserID: res.User.ID, Email: res.User.Email, Role: res.User.Role}

	if u.FirstName == "" && u.LastName == "" {
		return sess, nil
	}
	profile, err := s.profiles.GetByUserID(ctx, sess.UserID)
	if err != nil {
		return sess, fmt.Errorf("seed profile %s: %w", u.Email, err)
	}
	profile.FirstName = u.FirstName
	profile.LastName = u.LastName
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return sess, fmt.Errorf("seed profile %s: %w", u.Email, err)
	}
	return sess, nil
}

func (p FixtureProperty) input() service.CreatePropertyInput {
	price := p.Price
	in := service.CreatePropertyInput{
		Type:              p.Type,
		Title:             p.Title,
		Description:       p.Description,
		Price:             &price,
		AddressProvince:   p.Province,
		AddressCity:       p.City,
		AddressStreet:     p.Street,
		AddressStreetNum:  p.StreetNum,
		AddressPostalCode: p.PostalCode,
		Amenities:         p.Amenities,
	}
	if p.Bedrooms > 0 {
		in.Bedrooms = &p.Bedrooms
	}
	if p.Bathrooms > 0 {
		in.Bathrooms = &p.Bathrooms
	}
	if p.Size > 0 {
		in.Size = &p.Size
	}
	return in
}

func fakeProperty(f *gofakeit.Faker) FixtureProperty {
	types := []string{"Condo", "House", "Townhouse", "Multiplex"}
	amenities := []string{"gym", "pool", "parking", "balcony", "storage locker", "garden"}
	addr := f.Address()
	kind := f.RandomString(types)
	return FixtureProperty{
		Title:       fmt.Sprintf("%s on %s", kind, addr.Street),
		Type:        kind,
		Description: f.Paragraph(1, 3, 10, " "),
		Price:       float64(f.Number(300, 2500)) * 1000,
		Province:    addr.State,
		City:        addr.City,
		Street:      addr.Street,
		PostalCode:  addr.Zip,
		Bedrooms:    f.Number(1, 5),
		Bathrooms:   f.Number(1, 4),
		Size:        f.Number(500, 3500),
		Amenities:   []string{f.RandomString(amenities), f.RandomString(amenities)},
	}
}

// emailPart keeps the ASCII letters of a generated name.
func emailPart(name string) string {
	out := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, strings.ToLower(name))
	if out == "" {
		return "seeker"
	}
	return out
}
