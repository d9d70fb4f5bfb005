package remindlog

import (
	"context"
	"remindbot/internal/core/domain/chat"
	c "remindbot/internal/core/domain/common"
	"remindbot/internal/core/domain/remindlog"
	"remindbot/internal/db"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/suite"
)

var Now = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

type testSuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *PgxRemindLogRepository
}

func (suite *testSuite) SetupSuite() {
	suite.repo = NewPgxRemindLogRepository(suite.pool)
}

func (suite *testSuite) TearDownSuite() {
	suite.pool.Close()
}

func (suite *testSuite) TearDownTest() {
	db.TruncateTables(suite.pool)
}

func TestPgxRemindLogRepository(t *testing.T) {
	suite.Run(t, &testSuite{pool: db.CreateTestPool(t)})
}

func (s *testSuite) TestCreate() {
	// Setup ---
	startAt := time.Date(2025, 12, 25, 9, 0, 0, 0, time.UTC)

	// Exercise ---
	timed, err := s.repo.Create(context.Background(), remindlog.CreateInput{
		UserID:    "42",
		UserName:  "alice",
		Text:      "2025/12/25 18:00 party",
		Title:     "party",
		StartAt:   c.Present(startAt),
		CreatedAt: Now,
	})
	s.Require().Nil(err)
	untimed, err := s.repo.Create(context.Background(), remindlog.CreateInput{
		UserID:    "42",
		Text:      "buy milk",
		Title:     "buy milk",
		CreatedAt: Now,
	})

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	assert.Equal(remindlog.Entry{
		ID:        timed.ID,
		UserID:    chat.UserID("42"),
		UserName:  "alice",
		Text:      "2025/12/25 18:00 party",
		Title:     "party",
		StartAt:   c.Present(startAt),
		CreatedAt: Now,
	}, timed)
	assert.False(untimed.StartAt.IsPresent)
	assert.Equal("", untimed.UserName)
	assert.Greater(untimed.ID, timed.ID)
}

func (s *testSuite) TestReadLatest() {
	// Setup ---
	for ix := 0; ix < 5; ix++ {
		_, err := s.repo.Create(context.Background(), remindlog.CreateInput{
			UserID:    "42",
			Text:      "entry",
			Title:     string(rune('a' + ix)),
			CreatedAt: Now.Add(time.Duration(ix) * time.Minute),
		})
		s.Require().Nil(err)
	}

	// Exercise ---
	entries, err := s.repo.ReadLatest(context.Background(), 3)

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	titles := make([]string, 0, len(entries))
	for _, entry := range entries {
		titles = append(titles, entry.Title)
	}
	assert.Equal([]string{"e", "d", "c"}, titles)
}
