package dispatchduereminders

import (
	"context"
	"errors"
	"remindbot/internal/core/domain/chat"
	c "remindbot/internal/core/domain/common"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/metrics"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	createreminder "remindbot/internal/core/services/create_reminder"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	USER_ID    = chat.UserID("1001")
	CHANNEL_ID = chat.ChannelID("-2002")
)

var RemindAt = time.Date(2025, 12, 25, 8, 0, 0, 0, time.UTC)

type testSuite struct {
	suite.Suite
	now        time.Time
	logger     *logging.FakeLogger
	repository *reminder.FakeRepository
	resolver   *chat.FakeChannelResolver
	sender     *chat.FakeSender
	observer   *metrics.FakeObserver
	service    services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.now = RemindAt.Add(time.Second)
	suite.logger = logging.NewFakeLogger()
	suite.repository = reminder.NewFakeRepository()
	suite.resolver = chat.NewFakeChannelResolver(CHANNEL_ID)
	suite.sender = chat.NewFakeSender()
	suite.observer = metrics.NewFakeObserver()
	suite.service = New(
		suite.logger,
		suite.repository,
		suite.resolver,
		suite.sender,
		suite.observer,
		func() time.Time { return suite.now },
	)
}

func TestDispatchDueRemindersService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) addReminder(id reminder.ID, channelID chat.ChannelID, remindAt time.Time) {
	s.repository = reminder.NewFakeRepository(append(s.repository.All(), reminder.Reminder{
		ID:        id,
		UserID:    USER_ID,
		ChannelID: channelID,
		Title:     "title",
		ExecuteAt: remindAt,
		RemindAt:  remindAt,
	})...)
	s.service = New(s.logger, s.repository, s.resolver, s.sender, s.observer, func() time.Time { return s.now })
}

func (s *testSuite) pending() []reminder.Reminder {
	pending := make([]reminder.Reminder, 0)
	for _, r := range s.repository.All() {
		if !r.IsReminded {
			pending = append(pending, r)
		}
	}
	return pending
}

func (s *testSuite) TestEndToEndWithCreatedReminder() {
	// Setup ---
	create := createreminder.New(s.logger, s.repository, func() time.Time { return RemindAt.Add(-24 * time.Hour) })
	created, err := create.Run(context.Background(), createreminder.Input{
		UserID:    USER_ID,
		ChannelID: CHANNEL_ID,
		Text:      "2025/12/25 18:00 クリスマスパーティ 60",
	})
	s.Require().Nil(err)
	s.Require().Equal(RemindAt, created.Reminder.RemindAt)

	// Exercise ---
	s.now = time.Date(2025, 12, 25, 8, 0, 1, 0, time.UTC)
	result, err := s.service.Run(context.Background(), Input{})

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	assert.Equal(Result{Due: 1, Sent: 1}, result)
	assert.Len(s.sender.Sent, 1)
	msg := s.sender.Sent[0]
	assert.Equal(CHANNEL_ID, msg.ChannelID)
	assert.Equal(c.Present(USER_ID), msg.Mention)
	assert.True(strings.Contains(msg.Text, "クリスマスパーティ"))
	assert.True(strings.Contains(msg.Text, "2025/12/25 18:00"))
	assert.Empty(s.pending())
	assert.Equal(1, s.observer.Count(TASK, metrics.OutcomeSent))
}

func (s *testSuite) TestNotDueYet() {
	s.addReminder(1, CHANNEL_ID, RemindAt)
	s.now = RemindAt.Add(-time.Second)

	result, err := s.service.Run(context.Background(), Input{})

	assert := s.Require()
	assert.Nil(err)
	assert.Equal(Result{}, result)
	assert.Empty(s.sender.Sent)
	assert.Len(s.pending(), 1)
}

func (s *testSuite) TestDueBoundaryIsInclusive() {
	s.addReminder(1, CHANNEL_ID, RemindAt)
	s.now = RemindAt

	result, err := s.service.Run(context.Background(), Input{})

	s.Require().Nil(err)
	s.Require().Equal(1, result.Sent)
}

func (s *testSuite) TestFailedSendIsRetriedAndMarkedOnce() {
	// Setup ---
	s.addReminder(1, CHANNEL_ID, RemindAt)
	s.sender.Errors = []error{errors.New("telegram is down")}

	// Exercise ---
	first, err := s.service.Run(context.Background(), Input{})
	s.Require().Nil(err)
	pendingAfterFailure := s.pending()
	second, err := s.service.Run(context.Background(), Input{})
	s.Require().Nil(err)
	third, err := s.service.Run(context.Background(), Input{})
	s.Require().Nil(err)

	// Verify ---
	assert := s.Require()
	assert.Equal(Result{Due: 1, Failed: 1}, first)
	assert.Len(pendingAfterFailure, 1)
	assert.Equal(Result{Due: 1, Sent: 1}, second)
	assert.Equal(Result{}, third)
	assert.Equal([]reminder.ID{1}, s.repository.MarkRemindedWith)
	assert.Len(s.sender.Sent, 1)
	assert.Empty(s.pending())
}

func (s *testSuite) TestUnresolvedChannelIsSkippedWithoutBlockingBatch() {
	// Setup ---
	s.addReminder(1, chat.ChannelID("gone"), RemindAt)
	s.addReminder(2, CHANNEL_ID, RemindAt)

	// Exercise ---
	result, err := s.service.Run(context.Background(), Input{})

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	assert.Equal(Result{Due: 2, Sent: 1, Skipped: 1}, result)
	assert.Equal([]reminder.ID{2}, s.repository.MarkRemindedWith)
	pending := s.pending()
	assert.Len(pending, 1)
	assert.Equal(reminder.ID(1), pending[0].ID)
}

func (s *testSuite) TestResolverErrorIsFailure() {
	// Setup ---
	s.addReminder(1, CHANNEL_ID, RemindAt)
	s.resolver.Error = errors.New("timeout")

	// Exercise ---
	result, err := s.service.Run(context.Background(), Input{})

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	assert.Equal(Result{Due: 1, Failed: 1}, result)
	assert.Empty(s.sender.Sent)
	assert.Equal(1, s.observer.Count(TASK, metrics.OutcomeFailed))
	assert.Equal(0, s.observer.Count(TASK, metrics.OutcomeSkipped))
	assert.Len(s.pending(), 1)
}

func (s *testSuite) TestMarkFailureIsLoggedAndResent() {
	// Setup ---
	s.addReminder(1, CHANNEL_ID, RemindAt)
	s.repository.MarkRemindedError = errors.New("write conflict")

	// Exercise ---
	first, err := s.service.Run(context.Background(), Input{})
	s.Require().Nil(err)
	s.repository.MarkRemindedError = nil
	second, err := s.service.Run(context.Background(), Input{})

	// Verify ---
	assert := s.Require()
	assert.Nil(err)
	assert.Equal(Result{Due: 1, Sent: 1}, first)
	assert.Equal(Result{Due: 1, Sent: 1}, second)
	assert.Len(s.sender.Sent, 2)
	assert.Empty(s.pending())
	assert.NotEmpty(s.logger.Records(logging.ERROR))
}

func (s *testSuite) TestReadFailure() {
	s.repository.ReadError = errors.New("connection reset")

	_, err := s.service.Run(context.Background(), Input{})

	s.Require().ErrorIs(err, reminder.ErrStoreFailure)
}
