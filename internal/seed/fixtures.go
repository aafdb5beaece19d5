package seed

import (
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/demo.yml
var demoFixtures []byte

// Fixtures is the hand-written part of a seed run.
type Fixtures struct {
	Password   string            `yaml:"password"`
	Builders   []FixtureUser     `yaml:"builders"`
	Seekers    []FixtureUser     `yaml:"seekers"`
	Properties []FixtureProperty `yaml:"properties"`
	Interests  []FixtureInterest `yaml:"interests"`
}

// FixtureUser is an account plus the name stored on its profile.
type FixtureUser struct {
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

// FixtureProperty is a listing owned by the builder with the given email.
type FixtureProperty struct {
	Builder     string   `yaml:"builder"`
	Title       string   `yaml:"title"`
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Price       float64  `yaml:"price"`
	Province    string   `yaml:"province"`
	City        string   `yaml:"city"`
	Street      string   `yaml:"street"`
	StreetNum   string   `yaml:"street_num"`
	PostalCode  string   `yaml:"postal_code"`
	Bedrooms    int      `yaml:"bedrooms"`
	Bathrooms   int      `yaml:"bathrooms"`
	Size        int      `yaml:"size"`
	Amenities   []string `yaml:"amenities"`
}

// FixtureInterest links a seeker to a listing by title.
type FixtureInterest struct {
	Seeker          string  `yaml:"seeker"`
	Property        string  `yaml:"property"`
	Level           string  `yaml:"level"`
	Amount          float64 `yaml:"amount"`
	Description     string  `yaml:"description"`
	DisplayRealName bool    `yaml:"display_real_name"`
}

// DefaultFixtures returns the embedded demo data set.
func DefaultFixtures() (*Fixtures, error) {
	return parseFixtures(demoFixtures)
}

// LoadFixtures reads a fixture document from r.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return parseFixtures(raw)
}

func parseFixtures(raw []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// validate checks cross references so a bad file fails before anything is written.
func (fx *Fixtures) validate() error {
	if fx.Password == "" {
		return fmt.Errorf("fixtures: password is required")
	}
	builders := make(map[string]bool, len(fx.Builders))
	for _, b := range fx.Builders {
		builders[b.Email] = true
	}
	seekers := make(map[string]bool, len(fx.Seekers))
	for _, s := range fx.Seekers {
		seekers[s.Email] = true
	}
	titles := make(map[string]bool, len(fx.Properties))
	for _, p := range fx.Properties {
		if !builders[p.Builder] {
			return fmt.Errorf("fixtures: property %q names unknown builder %q", p.Title, p.Builder)
		}
		if titles[p.Title] {
			return fmt.Errorf("fixtures: duplicate property title %q", p.Title)
		}
		titles[p.Title] = true
	}
	for _, in := range fx.Interests {
		if !seekers[in.Seeker] {
			return fmt.Errorf("fixtures: interest names unknown seeker %q", in.Seeker)
		}
		if !titles[in.Property] {
			return fmt.Errorf("fixtures: interest names unknown property %q", in.Property)
		}
	}
	return nil
}
