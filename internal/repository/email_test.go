package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oneboxhq/onebox/internal/enum"
	"github.com/oneboxhq/onebox/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, MigrateDB(db))
	return db
}

func newInboundEmail(messageID, subject string) *models.Email {
	return &models.Email{
		MessageID: messageID,
		Folder:    "INBOX",
		Direction: enum.EmailInbound,
		Status:    enum.EmailStatusReceived,
		Subject:   subject,
	}
}

func TestCreateDeduplicatesOnMessageID(t *testing.T) {
	repo := NewEmailRepository(newTestDB(t))

	first, err := repo.Create(context.Background(), newInboundEmail("dup@example.com", "First copy"))
	require.NoError(t, err)

	second, err := repo.Create(context.Background(), newInboundEmail("dup@example.com", "Second copy"))
	require.NoError(t, err)

	assert.Equal(t, first, second)

	stored, err := repo.GetByID(context.Background(), first)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "First copy", stored.Subject)
}

func TestCreateTrimsAngleBracketsBeforeDedup(t *testing.T) {
	repo := NewEmailRepository(newTestDB(t))

	first, err := repo.Create(context.Background(), newInboundEmail("<wrapped@example.com>", "Original"))
	require.NoError(t, err)

	second, err := repo.Create(context.Background(), newInboundEmail("wrapped@example.com", "Copy"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stored, err := repo.GetByMessageID(context.Background(), "<wrapped@example.com>")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "wrapped@example.com", stored.MessageID)
}

func TestCreateKeepsDistinctMessagesWithoutMessageID(t *testing.T) {
	db := newTestDB(t)
	repo := NewEmailRepository(db)

	first, err := repo.Create(context.Background(), newInboundEmail("", "First message"))
	require.NoError(t, err)

	second, err := repo.Create(context.Background(), newInboundEmail("", "Second message"))
	require.NoError(t, err)

	// Two distinct messages that both lack a Message-ID must both persist.
	assert.NotEqual(t, first, second)

	var count int64
	require.NoError(t, db.Model(&models.Email{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestListByCategoryMatchesExactly(t *testing.T) {
	repo := NewEmailRepository(newTestDB(t))

	spam := newInboundEmail("spam@example.com", "Exclusive offer")
	spam.Category = enum.CategorySpam
	inbox := newInboundEmail("inbox@example.com", "Project Update")
	inbox.Category = enum.CategoryInbox

	_, err := repo.Create(context.Background(), spam)
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), inbox)
	require.NoError(t, err)

	emails, err := repo.ListByCategory(context.Background(), enum.CategorySpam)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "Exclusive offer", emails[0].Subject)

	emails, err = repo.ListByCategory(context.Background(), enum.EmailCategory("Unknown"))
	require.NoError(t, err)
	assert.Empty(t, emails)
}
