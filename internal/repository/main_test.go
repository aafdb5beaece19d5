package repository

import (
	"fmt"
	"testing"
	"time"

	"propmatch/internal/models"
	"propmatch/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t)
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "hash", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProperty(t *testing.T, db *gorm.DB, builder *models.User, title string, createdAt time.Time) *models.Property {
	t.Helper()
	price := 450000.0
	p := &models.Property{
		Title:       title,
		Type:        "condo",
		Price:       &price,
		BuilderID:   &builder.ID,
		BuilderName: builder.Email,
		Amenities:   []string{"gym", "parking"},
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seqEmail(prefix string, i int) string {
	return fmt.Sprintf("%s%d@example.com", prefix, i)
}
