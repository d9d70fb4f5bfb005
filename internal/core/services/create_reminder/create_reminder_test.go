package createreminder

import (
	"context"
	"errors"
	"remindbot/internal/core/domain/calendar"
	"remindbot/internal/core/domain/chat"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	synccalendarevent "remindbot/internal/core/services/sync_calendar_event"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	USER_ID    = chat.UserID("1001")
	CHANNEL_ID = chat.ChannelID("-2002")
)

var Now = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

type testSuite struct {
	suite.Suite
	logger     *logging.FakeLogger
	repository *reminder.FakeRepository
	service    services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.logger = logging.NewFakeLogger()
	suite.repository = reminder.NewFakeRepository()
	suite.service = New(suite.logger, suite.repository, func() time.Time { return Now })
}

func TestCreateReminderService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestCreateSuccess() {
	cases := []struct {
		id                  string
		text                string
		title               string
		executeAt           time.Time
		remindBeforeMinutes uint32
		remindAt            time.Time
	}{
		{
			id:                  "christmas party",
			text:                "2025/12/25 18:00 クリスマスパーティ 60",
			title:               "クリスマスパーティ",
			executeAt:           time.Date(2025, 12, 25, 9, 0, 0, 0, time.UTC),
			remindBeforeMinutes: 60,
			remindAt:            time.Date(2025, 12, 25, 8, 0, 0, 0, time.UTC),
		},
		{
			id:                  "no lead time reminds at execution",
			text:                "2025/12/24 7:30 buy cake",
			title:               "buy cake",
			executeAt:           time.Date(2025, 12, 23, 22, 30, 0, 0, time.UTC),
			remindBeforeMinutes: 0,
			remindAt:            time.Date(2025, 12, 23, 22, 30, 0, 0, time.UTC),
		},
		{
			id:                  "lead time crosses midnight",
			text:                "2026/01/01 00:10 new year 30",
			title:               "new year",
			executeAt:           time.Date(2025, 12, 31, 15, 10, 0, 0, time.UTC),
			remindBeforeMinutes: 30,
			remindAt:            time.Date(2025, 12, 31, 14, 40, 0, 0, time.UTC),
		},
	}

	for _, testcase := range cases {
		s.Run(testcase.id, func() {
			// Setup ---
			repository := reminder.NewFakeRepository()
			service := New(logging.NewFakeLogger(), repository, func() time.Time { return Now })

			// Exercise ---
			result, err := service.Run(
				context.Background(),
				Input{UserID: USER_ID, ChannelID: CHANNEL_ID, Text: testcase.text},
			)

			// Verify ---
			assert := s.Require()
			assert.Nil(err)
			rem := result.Reminder
			assert.NotZero(rem.ID)
			assert.Equal(USER_ID, rem.UserID)
			assert.Equal(CHANNEL_ID, rem.ChannelID)
			assert.Equal(testcase.title, rem.Title)
			assert.Equal(testcase.executeAt, rem.ExecuteAt)
			assert.Equal(testcase.remindBeforeMinutes, rem.RemindBeforeMinutes)
			assert.Equal(testcase.remindAt, rem.RemindAt)
			assert.Equal(Now, rem.CreatedAt)
			assert.False(rem.IsReminded)
			assert.False(rem.RemindAt.After(rem.ExecuteAt))
			assert.Nil(rem.Validate())
			assert.Equal([]reminder.Reminder{rem}, repository.All())
		})
	}
}

func (s *testSuite) TestParseFailureWritesNothing() {
	_, err := s.service.Run(
		context.Background(),
		Input{UserID: USER_ID, ChannelID: CHANNEL_ID, Text: "tomorrow at noon lunch"},
	)

	assert := s.Require()
	assert.ErrorIs(err, reminder.ErrScheduleNotMatched)
	assert.Empty(s.repository.All())
}

func (s *testSuite) TestInvalidInput() {
	cases := []struct {
		id    string
		input Input
	}{
		{id: "no user", input: Input{ChannelID: CHANNEL_ID, Text: "2025/12/25 18:00 x"}},
		{id: "no channel", input: Input{UserID: USER_ID, Text: "2025/12/25 18:00 x"}},
		{id: "no text", input: Input{UserID: USER_ID, ChannelID: CHANNEL_ID}},
		{
			id:    "text too long",
			input: Input{UserID: USER_ID, ChannelID: CHANNEL_ID, Text: "2025/12/25 18:00 " + strings.Repeat("x", 2000)},
		},
	}

	for _, testcase := range cases {
		s.Run(testcase.id, func() {
			repository := reminder.NewFakeRepository()
			service := New(logging.NewFakeLogger(), repository, func() time.Time { return Now })

			_, err := service.Run(context.Background(), testcase.input)

			assert := s.Require()
			assert.NotNil(err)
			assert.Empty(repository.All())
		})
	}
}

func (s *testSuite) TestTitleTooLong() {
	text := "2025/12/25 18:00 " + strings.Repeat("長", reminder.MAX_TITLE_LEN+1)

	_, err := s.service.Run(context.Background(), Input{UserID: USER_ID, ChannelID: CHANNEL_ID, Text: text})

	assert := s.Require()
	assert.ErrorIs(err, reminder.ErrTitleTooLong)
	assert.Empty(s.repository.All())
}

func (s *testSuite) TestLeadTimeBound() {
	cases := []struct {
		id       string
		minutes  string
		expected error
	}{
		{id: "one year is accepted", minutes: "527040", expected: nil},
		{id: "beyond one year", minutes: "527041", expected: reminder.ErrLeadTimeTooLong},
		{id: "duration overflow", minutes: "200000000", expected: reminder.ErrLeadTimeTooLong},
		{id: "uint32 max", minutes: "4294967295", expected: reminder.ErrLeadTimeTooLong},
	}

	for _, testcase := range cases {
		s.Run(testcase.id, func() {
			// Setup ---
			repository := reminder.NewFakeRepository()
			service := New(logging.NewFakeLogger(), repository, func() time.Time { return Now })

			// Exercise ---
			result, err := service.Run(
				context.Background(),
				Input{UserID: USER_ID, ChannelID: CHANNEL_ID, Text: "2025/12/25 18:00 party " + testcase.minutes},
			)

			// Verify ---
			assert := s.Require()
			if testcase.expected != nil {
				assert.ErrorIs(err, testcase.expected)
				assert.Empty(repository.All())
				return
			}
			assert.Nil(err)
			assert.Nil(result.Reminder.Validate())
			assert.Equal(
				time.Date(2024, 12, 24, 9, 0, 0, 0, time.UTC),
				result.Reminder.RemindAt,
			)
		})
	}
}

func (s *testSuite) TestStoreFailure() {
	// Setup ---
	storeErr := errors.New("connection refused")
	s.repository.CreateError = storeErr

	// Exercise ---
	_, err := s.service.Run(
		context.Background(),
		Input{UserID: USER_ID, ChannelID: CHANNEL_ID, Text: "2025/12/25 18:00 party"},
	)

	// Verify ---
	assert := s.Require()
	assert.ErrorIs(err, reminder.ErrStoreFailure)
	assert.ErrorIs(err, storeErr)
}

func (s *testSuite) TestRateLimitKey() {
	s.Equal("create_reminder::1001", Input{UserID: USER_ID}.GetRateLimitKey())
}

type testCalendarSyncSuite struct {
	suite.Suite
	repository *reminder.FakeRepository
	provider   *calendar.FakeProvider
	service    services.Service[Input, Result]
}

func (suite *testCalendarSyncSuite) SetupTest() {
	log := logging.NewFakeLogger()
	now := func() time.Time { return Now }
	suite.repository = reminder.NewFakeRepository()
	suite.provider = calendar.NewFakeProvider()
	suite.service = NewWithCalendarSync(
		log,
		synccalendarevent.New(log, suite.provider, now),
		New(log, suite.repository, now),
	)
}

func TestCreateReminderWithCalendarSync(t *testing.T) {
	suite.Run(t, new(testCalendarSyncSuite))
}

func (s *testCalendarSyncSuite) TestEventCreatedAtExecutionTime() {
	// Exercise ---
	result, err := s.service.Run(
		context.Background(),
		Input{UserID: USER_ID, ChannelID: CHANNEL_ID, Text: "2025/12/25 18:00 クリスマスパーティ 60"},
	)

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	assert.True(result.CalendarSync.IsPresent)
	assert.Equal(synccalendarevent.Created, result.CalendarSync.Value.Outcome)
	assert.Len(s.provider.Inserted, 1)
	inserted := s.provider.Inserted[0]
	assert.Equal("クリスマスパーティ", inserted.Summary)
	assert.Equal(time.Date(2025, 12, 25, 9, 0, 0, 0, time.UTC), inserted.Start)
	assert.Contains(inserted.Description, "2025/12/25 18:00 クリスマスパーティ 60")
}

func (s *testCalendarSyncSuite) TestSameTitleIsNotDuplicated() {
	input := Input{UserID: USER_ID, ChannelID: CHANNEL_ID, Text: "2025/12/25 18:00 party"}

	_, err := s.service.Run(context.Background(), input)
	s.Require().Nil(err)
	result, err := s.service.Run(context.Background(), input)

	assert := s.Require()
	assert.Nil(err)
	assert.Equal(synccalendarevent.Skipped, result.CalendarSync.Value.Outcome)
	assert.Len(s.repository.All(), 2)
	assert.Len(s.provider.Events(), 1)
}

func (s *testCalendarSyncSuite) TestCalendarFailureKeepsReminder() {
	// Setup ---
	s.provider.InsertError = errors.New("quota exceeded")

	// Exercise ---
	result, err := s.service.Run(
		context.Background(),
		Input{UserID: USER_ID, ChannelID: CHANNEL_ID, Text: "2025/12/25 18:00 party"},
	)

	// Verify ---
	assert := s.Require()
	assert.ErrorIs(err, calendar.ErrCalendarFailure)
	assert.NotZero(result.Reminder.ID)
	assert.False(result.CalendarSync.IsPresent)
	assert.Len(s.repository.All(), 1)
}

func (s *testCalendarSyncSuite) TestParseFailureSkipsCalendar() {
	_, err := s.service.Run(context.Background(), Input{UserID: USER_ID, ChannelID: CHANNEL_ID, Text: "party"})

	assert := s.Require()
	assert.ErrorIs(err, reminder.ErrScheduleNotMatched)
	assert.Empty(s.provider.FindWith)
	assert.Empty(s.provider.Inserted)
}
