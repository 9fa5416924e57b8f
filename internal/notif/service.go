package notif

import (
	"context"
	"sync"
	"sync/atomic"

	"smsvault/internal/common"
	"smsvault/internal/config"
	"smsvault/internal/logger"
)

const (
	defaultWorkers    = 2
	defaultBufferSize = 100
)

// NotificationManager fans events out to its observers on a fixed pool of
// workers. Events queued before Shutdown are still delivered.
type NotificationManager struct {
	observers    map[string]common.Observer
	eventChannel chan common.NotificationEvent
	workerPool   int
	log          logger.Logger
	mu           sync.RWMutex
	sendMu       sync.RWMutex
	closed       bool
	dropped      atomic.Uint64
	wg           sync.WaitGroup
	once         sync.Once
}

func NewNotificationManager(workerPoolSize, bufferSize int, log logger.Logger) *NotificationManager {
	if workerPoolSize < 1 {
		workerPoolSize = defaultWorkers
	}
	if bufferSize < 1 {
		bufferSize = defaultBufferSize
	}

	nm := &NotificationManager{
		observers:    make(map[string]common.Observer),
		eventChannel: make(chan common.NotificationEvent, bufferSize),
		workerPool:   workerPoolSize,
		log:          log,
	}

	for i := 0; i < workerPoolSize; i++ {
		nm.wg.Add(1)
		go nm.processEvents()
	}

	return nm
}

func (nm *NotificationManager) Subscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.observers[observer.Name()] = observer
	nm.log.Infof("Observer %s subscribed", observer.Name())
}

func (nm *NotificationManager) Unsubscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	delete(nm.observers, observer.Name())
	nm.log.Infof("Observer %s unsubscribed", observer.Name())
}

// Notify delivers event to every observer on the calling goroutine. Observer
// errors are logged and do not stop the others.
func (nm *NotificationManager) Notify(event common.NotificationEvent) {
	nm.mu.RLock()
	observers := make([]common.Observer, 0, len(nm.observers))
	for _, obs := range nm.observers {
		observers = append(observers, obs)
	}
	nm.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Update(event); err != nil {
			nm.log.Errorf("Observer %s update failed for message %s: %v", observer.Name(), event.MessageID, err)
		}
	}
}

// NotifyAsync queues event for the workers. It never blocks: when the queue
// is full or the manager is shut down the event is dropped and logged.
func (nm *NotificationManager) NotifyAsync(event common.NotificationEvent) {
	nm.sendMu.RLock()
	defer nm.sendMu.RUnlock()

	if nm.closed {
		nm.dropped.Add(1)
		nm.log.Warnf("Notification manager stopped, dropping event for message %s", event.MessageID)
		return
	}

	select {
	case nm.eventChannel <- event:
	default:
		nm.dropped.Add(1)
		nm.log.Warnf("Notification channel full, dropping event for message %s", event.MessageID)
	}
}

// Dropped is the number of events NotifyAsync could not queue.
func (nm *NotificationManager) Dropped() uint64 {
	return nm.dropped.Load()
}

func (nm *NotificationManager) processEvents() {
	defer nm.wg.Done()

	for event := range nm.eventChannel {
		nm.Notify(event)
	}
}

// Shutdown stops intake, lets the workers finish the queue and waits for
// them. Safe to call more than once.
func (nm *NotificationManager) Shutdown() {
	nm.once.Do(func() {
		nm.sendMu.Lock()
		nm.closed = true
		close(nm.eventChannel)
		nm.sendMu.Unlock()

		nm.wg.Wait()
		nm.log.Infof("NotificationManager shutdown complete")
	})
}

// NotificationService is the post-commit hook the message service calls.
type NotificationService struct {
	manager *NotificationManager
	enabled bool
	log     logger.Logger
}

func NewNotificationService(
	cfg *config.Config,
	emailService common.EmailService,
	log logger.Logger,
) *NotificationService {
	manager := NewNotificationManager(cfg.Notification.Workers, cfg.Notification.ChannelBufferSize, log)

	if emailService != nil {
		emailObserver := NewEmailNotificationObserver(emailService, cfg.Email, log)
		manager.Subscribe(emailObserver)
	}

	return &NotificationService{
		manager: manager,
		enabled: cfg.Notification.Enabled,
		log:     log,
	}
}

// Notify hands the event to the worker pool and returns at once. The request
// context is not carried over: delivery outlives the request that caused it.
func (s *NotificationService) Notify(ctx context.Context, event common.NotificationEvent) {
	if !s.enabled {
		s.log.Debugf("Notifications disabled, skipping message %s", event.MessageID)
		return
	}

	s.manager.NotifyAsync(event)
	s.log.WithField("request_id", common.RequestIDFromContext(ctx)).
		Debugf("Notification queued: message=%s", event.MessageID)
}

func (s *NotificationService) Subscribe(observer common.Observer) {
	s.manager.Subscribe(observer)
}

func (s *NotificationService) Shutdown() {
	s.manager.Shutdown()
	s.log.Infof("NotificationService shutdown complete")
}
