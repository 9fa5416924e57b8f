package notif

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"smsvault/internal/common"
	"smsvault/internal/config"
	"smsvault/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTestObserver struct {
	mock.Mock
	updateCount int
	mu          sync.Mutex
}

func (m *MockTestObserver) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTestObserver) Update(event common.NotificationEvent) error {
	m.mu.Lock()
	m.updateCount++
	m.mu.Unlock()
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockTestObserver) GetUpdateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCount
}

func createMockObserver(name string) *MockTestObserver {
	obs := &MockTestObserver{}
	obs.On("Name").Return(name)
	return obs
}

// blockingObserver holds every Update until release is closed.
type blockingObserver struct {
	release chan struct{}
	started chan struct{}
	count   atomic.Int64
}

func (b *blockingObserver) Name() string { return "blocking" }

func (b *blockingObserver) Update(common.NotificationEvent) error {
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-b.release
	b.count.Add(1)
	return nil
}

func testEvent(id string) common.NotificationEvent {
	return common.NotificationEvent{
		Type:      common.SMSReceivedType,
		MessageID: id,
		Sender:    "Bank",
		TS:        "2024-01-01T00:00:00Z",
		Body:      "Your code is 1234",
	}
}

func TestNewNotificationManager(t *testing.T) {
	nm := NewNotificationManager(3, 10, logger.NewNop())
	defer nm.Shutdown()

	assert.NotNil(t, nm.observers)
	assert.Equal(t, 3, nm.workerPool)
	assert.Equal(t, 10, cap(nm.eventChannel))
}

func TestNewNotificationManager_Defaults(t *testing.T) {
	nm := NewNotificationManager(0, 0, logger.NewNop())
	defer nm.Shutdown()

	assert.Equal(t, defaultWorkers, nm.workerPool)
	assert.Equal(t, defaultBufferSize, cap(nm.eventChannel))
}

func TestNotificationManager_SubscribeUnsubscribe(t *testing.T) {
	nm := NewNotificationManager(1, 1, logger.NewNop())
	defer nm.Shutdown()

	obs1 := createMockObserver("Observer1")
	obs2 := createMockObserver("Observer2")

	nm.Subscribe(obs1)
	nm.Subscribe(obs2)
	assert.Len(t, nm.observers, 2)

	nm.Unsubscribe(obs1)
	assert.Len(t, nm.observers, 1)
	assert.Equal(t, obs2, nm.observers["Observer2"])
}

func TestNotificationManager_Notify(t *testing.T) {
	nm := NewNotificationManager(1, 1, logger.NewNop())
	defer nm.Shutdown()

	failing := createMockObserver("Failing")
	healthy := createMockObserver("Healthy")
	event := testEvent("1")

	failing.On("Update", event).Return(errors.New("observer error"))
	healthy.On("Update", event).Return(nil)

	nm.Subscribe(failing)
	nm.Subscribe(healthy)
	nm.Notify(event)

	failing.AssertExpectations(t)
	healthy.AssertExpectations(t)
}

func TestNotificationManager_ShutdownDrainsQueue(t *testing.T) {
	nm := NewNotificationManager(2, 50, logger.NewNop())

	obs := createMockObserver("Counter")
	obs.On("Update", mock.Anything).Return(nil)
	nm.Subscribe(obs)

	for i := 0; i < 30; i++ {
		nm.NotifyAsync(testEvent(fmt.Sprint(i)))
	}
	nm.Shutdown()

	assert.Equal(t, 30, obs.GetUpdateCount())
	assert.Zero(t, nm.Dropped())
}

func TestNotificationManager_NotifyAsync_QueueFull(t *testing.T) {
	nm := NewNotificationManager(1, 1, logger.NewNop())

	obs := &blockingObserver{release: make(chan struct{}), started: make(chan struct{}, 1)}
	nm.Subscribe(obs)

	nm.NotifyAsync(testEvent("1"))
	<-obs.started // the only worker is now busy

	nm.NotifyAsync(testEvent("2")) // fills the buffer
	nm.NotifyAsync(testEvent("3")) // dropped, must not block

	assert.Equal(t, uint64(1), nm.Dropped())

	close(obs.release)
	nm.Shutdown()
	assert.Equal(t, int64(2), obs.count.Load())
}

func TestNotificationManager_NotifyAfterShutdown(t *testing.T) {
	nm := NewNotificationManager(1, 1, logger.NewNop())
	nm.Shutdown()

	assert.NotPanics(t, func() {
		nm.NotifyAsync(testEvent("late"))
	})
	assert.Equal(t, uint64(1), nm.Dropped())

	// a second shutdown is a no-op
	assert.NotPanics(t, nm.Shutdown)
}

func TestNotificationManager_ConcurrentOperations(t *testing.T) {
	nm := NewNotificationManager(4, 1000, logger.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			obs := createMockObserver(fmt.Sprintf("Observer%d", id))
			obs.On("Update", mock.Anything).Return(nil).Maybe()

			nm.Subscribe(obs)
			time.Sleep(5 * time.Millisecond)
			nm.Unsubscribe(obs)
		}(i)
	}

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			nm.NotifyAsync(testEvent(fmt.Sprint(i)))
		}(i)
	}

	wg.Wait()
	nm.Shutdown()
}

func TestNotificationService_Notify(t *testing.T) {
	cfg := &config.Config{
		Notification: config.NotificationConfig{Workers: 1, ChannelBufferSize: 10, Enabled: true},
	}
	service := NewNotificationService(cfg, nil, logger.NewNop())

	obs := createMockObserver("Recorder")
	event := testEvent("42")
	obs.On("Update", event).Return(nil).Once()
	service.Subscribe(obs)

	service.Notify(context.Background(), event)
	service.Shutdown()

	obs.AssertExpectations(t)
}

func TestNotificationService_Disabled(t *testing.T) {
	cfg := &config.Config{
		Notification: config.NotificationConfig{Workers: 1, ChannelBufferSize: 10, Enabled: false},
	}
	service := NewNotificationService(cfg, nil, logger.NewNop())

	obs := createMockObserver("Recorder")
	service.Subscribe(obs)

	service.Notify(context.Background(), testEvent("1"))
	service.Shutdown()

	obs.AssertNotCalled(t, "Update", mock.Anything)
}

func TestNotificationService_WiresEmailObserver(t *testing.T) {
	cfg := &config.Config{
		Notification: config.NotificationConfig{Workers: 1, ChannelBufferSize: 10, Enabled: true},
		Email:        config.EmailConfig{ToEmail: "me@example.com", Brand: "Lghnay"},
	}
	email := &recordingEmailService{}
	service := NewNotificationService(cfg, email, logger.NewNop())

	service.Notify(context.Background(), testEvent("5"))
	service.Shutdown()

	sent := email.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"me@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].Body, "Your code is 1234")
}

func TestNotificationService_ImplementsNotifier(t *testing.T) {
	var _ common.Notifier = (*NotificationService)(nil)
}
