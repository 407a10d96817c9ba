package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/spotqueue/config"
	"github.com/vogiaan1904/spotqueue/internal/directory"
	"github.com/vogiaan1904/spotqueue/internal/ledger"
	"github.com/vogiaan1904/spotqueue/internal/models"
	"github.com/vogiaan1904/spotqueue/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e models.TicketEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

func eventOf(typ models.TicketEventType) any {
	return mock.MatchedBy(func(e models.TicketEvent) bool {
		return e.Type == typ
	})
}

type serviceFixture struct {
	svc  QueueService
	dir  *directory.Directory
	prod *mockPublisher
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	l := logger.InitializeTestZapLogger()

	dir := directory.New(directory.NewStaticFeed(directory.DefaultCenters()...), config.DirectoryConfig{FetchTimeout: time.Second}, l)
	require.NoError(t, dir.Refresh(context.Background()))

	lg := ledger.New(dir, config.QueueConfig{CancelPolicy: config.CancelPolicyRetain}, l)
	prod := &mockPublisher{}
	pass := NewPassSigner(config.PassConfig{Secret: "test-secret", Expiry: time.Hour})

	return &serviceFixture{
		svc:  NewQueueService(dir, lg, pass, prod, l),
		dir:  dir,
		prod: prod,
	}
}

func TestQueueService_BookTicket(t *testing.T) {
	f := newServiceFixture(t)
	f.prod.On("Publish", mock.Anything, mock.MatchedBy(func(e models.TicketEvent) bool {
		return e.Type == models.TicketEventBooked && e.CenterQueueLength == 16 && !e.Timestamp.IsZero()
	})).Return(nil).Once()

	out, err := f.svc.BookTicket(context.Background(), BookTicketInput{CenterID: "1", NotifyBeforeMinutes: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(16), out.Ticket.TicketNumber)
	assert.Equal(t, int64(16), out.QueueLength)
	assert.Equal(t, models.TicketStatusWaiting, out.Ticket.Status)
	assert.NotEmpty(t, out.Pass)
	assert.False(t, out.PassExpiresAt.IsZero())
	f.prod.AssertExpectations(t)
}

func TestQueueService_BookTicketUnknownCenter(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.BookTicket(context.Background(), BookTicketInput{CenterID: "404"})
	assert.ErrorIs(t, err, ErrCenterNotFound)
	f.prod.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestQueueService_PublishFailureDoesNotFailBooking(t *testing.T) {
	f := newServiceFixture(t)
	f.prod.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	out, err := f.svc.BookTicket(context.Background(), BookTicketInput{CenterID: "2"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), out.Ticket.TicketNumber)
}

func TestQueueService_CancelTicket(t *testing.T) {
	f := newServiceFixture(t)
	f.prod.On("Publish", mock.Anything, eventOf(models.TicketEventBooked)).Return(nil)
	f.prod.On("Publish", mock.Anything, eventOf(models.TicketEventCancelled)).Return(nil).Once()

	out, err := f.svc.BookTicket(context.Background(), BookTicketInput{CenterID: "1"})
	require.NoError(t, err)

	got, err := f.svc.CancelTicket(context.Background(), out.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusCancelled, got.Status)

	_, err = f.svc.CancelTicket(context.Background(), out.Ticket.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.CancelTicket(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTicketNotFound)
	f.prod.AssertExpectations(t)
}

func TestQueueService_ListTickets(t *testing.T) {
	f := newServiceFixture(t)
	f.prod.On("Publish", mock.Anything, mock.Anything).Return(nil)

	empty := f.svc.ListTickets(context.Background())
	assert.NotNil(t, empty.Active)
	assert.NotNil(t, empty.History)

	a, err := f.svc.BookTicket(context.Background(), BookTicketInput{CenterID: "1"})
	require.NoError(t, err)
	b, err := f.svc.BookTicket(context.Background(), BookTicketInput{CenterID: "3"})
	require.NoError(t, err)
	_, err = f.svc.CancelTicket(context.Background(), a.Ticket.ID)
	require.NoError(t, err)

	out := f.svc.ListTickets(context.Background())
	require.Len(t, out.Active, 1)
	require.Len(t, out.History, 1)
	assert.Equal(t, b.Ticket.ID, out.Active[0].ID)
	assert.Equal(t, a.Ticket.ID, out.History[0].ID)
}

func TestQueueService_TicketSignals(t *testing.T) {
	f := newServiceFixture(t)
	f.prod.On("Publish", mock.Anything, eventOf(models.TicketEventBooked)).Return(nil)
	f.prod.On("Publish", mock.Anything, eventOf(models.TicketEventReady)).Return(nil).Once()
	f.prod.On("Publish", mock.Anything, eventOf(models.TicketEventCompleted)).Return(nil).Once()

	out, err := f.svc.BookTicket(context.Background(), BookTicketInput{CenterID: "4"})
	require.NoError(t, err)
	in := TicketSignalInput{TicketID: out.Ticket.ID, CenterID: "4", Timestamp: time.Now()}

	require.NoError(t, f.svc.HandleTicketReady(context.Background(), in))
	got, err := f.svc.GetTicket(context.Background(), out.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusReady, got.Status)

	// redelivery is dropped
	require.NoError(t, f.svc.HandleTicketReady(context.Background(), in))

	require.NoError(t, f.svc.HandleTicketCompleted(context.Background(), in))
	got, err = f.svc.GetTicket(context.Background(), out.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusCompleted, got.Status)

	assert.NoError(t, f.svc.HandleTicketCompleted(context.Background(), TicketSignalInput{TicketID: "missing"}))
	f.prod.AssertExpectations(t)
}

func TestQueueService_UpdateNotificationLeadTime(t *testing.T) {
	f := newServiceFixture(t)
	f.prod.On("Publish", mock.Anything, mock.Anything).Return(nil)

	out, err := f.svc.BookTicket(context.Background(), BookTicketInput{CenterID: "5", NotifyBeforeMinutes: 5})
	require.NoError(t, err)

	got, err := f.svc.UpdateNotificationLeadTime(context.Background(), out.Ticket.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, got.NotifyBeforeMinutes)

	_, err = f.svc.UpdateNotificationLeadTime(context.Background(), out.Ticket.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidLeadTime)
	f.prod.AssertCalled(t, "Publish", mock.Anything, eventOf(models.TicketEventLeadTimeUpdated))
}

func TestQueueService_VerifyTicketPass(t *testing.T) {
	f := newServiceFixture(t)
	f.prod.On("Publish", mock.Anything, mock.Anything).Return(nil)

	out, err := f.svc.BookTicket(context.Background(), BookTicketInput{CenterID: "1"})
	require.NoError(t, err)

	v, err := f.svc.VerifyTicketPass(context.Background(), out.Pass)
	require.NoError(t, err)
	assert.Equal(t, out.Ticket.ID, v.Claims.TicketID)
	assert.Equal(t, out.Ticket.TicketNumber, v.Claims.TicketNumber)

	_, err = f.svc.CancelTicket(context.Background(), out.Ticket.ID)
	require.NoError(t, err)
	_, err = f.svc.VerifyTicketPass(context.Background(), out.Pass)
	assert.ErrorIs(t, err, ErrPassRevoked)

	_, err = f.svc.VerifyTicketPass(context.Background(), "")
	assert.ErrorIs(t, err, ErrPassEmpty)
}

func TestQueueService_Centers(t *testing.T) {
	f := newServiceFixture(t)

	c, err := f.svc.GetCenter(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Hospitali ya Muhimbili", c.Name)

	_, err = f.svc.GetCenter(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCenterNotFound)

	assert.Len(t, f.svc.ListCenters(context.Background()), 5)
	assert.NoError(t, f.svc.RefreshDirectory(context.Background()))
}
