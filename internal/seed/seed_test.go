package seed

import (
	"context"
	"strings"
	"testing"

	"propmatch/internal/models"
	"propmatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixtures(t *testing.T) {
	fx, err := DefaultFixtures()
	require.NoError(t, err)
	assert.Equal(t, "password123", fx.Password)
	assert.Len(t, fx.Builders, 2)
	assert.Len(t, fx.Seekers, 3)
	assert.Len(t, fx.Properties, 3)
	assert.Len(t, fx.Interests, 3)
}

func TestLoadFixtures_RejectsDanglingReferences(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "no password",
			doc:  "builders: []\n",
			want: "password is required",
		},
		{
			name: "unknown builder",
			doc: `password: pw123456
properties:
  - builder: nobody@example.com
    title: Lost
`,
			want: "unknown builder",
		},
		{
			name: "unknown property",
			doc: `password: pw123456
seekers:
  - email: s@example.com
interests:
  - seeker: s@example.com
    property: Missing
`,
			want: "unknown property",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFixtures(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	fx, err := DefaultFixtures()
	require.NoError(t, err)

	s := NewSeeder(db)
	sum, err := s.Run(context.Background(), fx, Options{ExtraSeekers: 4, ExtraProperties: 2, RandSeed: 42})
	require.NoError(t, err)

	assert.Equal(t, 9, sum.Users)
	assert.Equal(t, 5, sum.Properties)
	assert.Equal(t, 7, sum.Interests)

	var builders int64
	require.NoError(t, db.Model(&models.User{}).Where("user_role = ?", models.RoleBuilder).Count(&builders).Error)
	assert.Equal(t, int64(2), builders)

	// The real-name opt-in snapshots the profile name onto the interest.
	var priya models.PropertyInterest
	require.NoError(t, db.Where("user_email = ?", "priya@example.com").First(&priya).Error)
	assert.Equal(t, "Priya Raman", priya.UserName)
	assert.Equal(t, models.InterestLevelReadyToInvest, priya.InterestLevel)

	var lucas models.PropertyInterest
	require.NoError(t, db.Where("user_email = ?", "lucas@example.com").First(&lucas).Error)
	assert.Equal(t, "lucas@example.com", lucas.UserName)

	var triplex models.Property
	require.NoError(t, db.Where("title = ?", "Riverside triplex").First(&triplex).Error)
	assert.Equal(t, "maplecrest@example.com", triplex.BuilderName)
	assert.Equal(t, []string{"separate meters", "laundry"}, []string(triplex.Amenities))
}

func TestSeeder_ClearAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	fx, err := DefaultFixtures()
	require.NoError(t, err)

	s := NewSeeder(db)
	_, err = s.Run(context.Background(), fx, Options{})
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(context.Background()))

	for _, model := range []any{&models.User{}, &models.Profile{}, &models.Property{}, &models.PropertyInterest{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}

	// Emails are free again after a clear.
	_, err = s.Run(context.Background(), fx, Options{})
	require.NoError(t, err)
}

func TestEmailPart(t *testing.T) {
	assert.Equal(t, "oconnor", emailPart("O'Connor"))
	assert.Equal(t, "seeker", emailPart("李"))
}
