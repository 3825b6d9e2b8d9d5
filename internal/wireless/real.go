package wireless

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/arcade-stick/internal/logic"
)

// queueCapacity bounds how many messages wait for the link while it is
// down. Oldest messages are dropped first once full.
const queueCapacity = 256

// RealService publishes to an actual MQTT broker.
type RealService struct {
	broker string

	mu     sync.Mutex
	cfg    Config
	client paho.Client
	queue  *ringBuffer
}

// NewRealService creates a service that will talk to the given broker.
// Nothing connects until Start.
func NewRealService(broker string) *RealService {
	return &RealService{
		broker: broker,
		cfg:    DefaultConfig(),
		queue:  newRingBuffer(queueCapacity),
	}
}

// Configure records the layout advertised on the next Start.
func (s *RealService) Configure(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Start builds a fresh client and begins connecting in the background.
// The client retries on its own, so a broker that is down at start
// simply means the service runs unconnected until the link comes up.
func (s *RealService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return fmt.Errorf("wireless already started")
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "CONNECTION_LOST",
	})
	if err != nil {
		return fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(s.broker).
		SetClientID("arcade-stick").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(TopicSystem, will, 1, false).
		SetOnConnectHandler(s.onConnect)

	s.client = paho.NewClient(opts)
	s.client.Connect()
	return nil
}

// onConnect runs on the client's goroutine every time the link comes
// up. It advertises the device descriptor and replays anything queued
// while the link was down.
func (s *RealService) onConnect(client paho.Client) {
	s.mu.Lock()
	desc, err := FormatDescriptor(s.cfg)
	queued := s.queue.drainAll()
	s.mu.Unlock()

	if err != nil {
		log.Printf("wireless: format descriptor: %v", err)
	} else {
		client.Publish(TopicDescriptor, 1, true, desc)
	}

	if len(queued) > 0 {
		log.Printf("wireless: connected, replaying %d queued messages", len(queued))
	}
	for _, msg := range queued {
		client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	}
}

// Stop disconnects and discards the session. Queued messages are
// dropped: they belong to the session that is ending.
func (s *RealService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	s.client.Disconnect(250)
	s.client = nil
	s.queue.reset()
	return nil
}

// Press announces a pressed button.
func (s *RealService) Press(b logic.Button) error {
	payload, err := FormatPress(b, time.Now())
	if err != nil {
		return fmt.Errorf("format press: %w", err)
	}
	s.publishInput(payload)
	return nil
}

// Release announces a released button.
func (s *RealService) Release(b logic.Button) error {
	payload, err := FormatRelease(b, time.Now())
	if err != nil {
		return fmt.Errorf("format release: %w", err)
	}
	s.publishInput(payload)
	return nil
}

// SetDirection announces the current hat direction.
func (s *RealService) SetDirection(d logic.Direction) error {
	payload, err := FormatDirection(d, time.Now())
	if err != nil {
		return fmt.Errorf("format direction: %w", err)
	}
	s.publishInput(payload)
	return nil
}

// publishInput sends fire-and-forget input. While the link is down the
// message is queued instead so a short broker blip does not eat a
// button press.
func (s *RealService) publishInput(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil || !s.client.IsConnected() {
		s.queue.push(bufferedMsg{topic: TopicInput, payload: payload, qos: 0})
		return
	}

	// QoS 0 (at-most-once), not retained. No wait: input must never
	// stall the poll loop.
	s.client.Publish(TopicInput, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the broker.
func (s *RealService) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	s.mu.Lock()
	if s.client == nil || !s.client.IsConnected() {
		s.queue.push(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
		s.mu.Unlock()
		return nil
	}
	client := s.client
	s.mu.Unlock()

	// QoS 1 (at-least-once): lifecycle events should survive a flaky link.
	token := client.Publish(TopicSystem, 1, event.Retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}

	return nil
}

// IsConnected reports whether the link to the broker is up.
func (s *RealService) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil && s.client.IsConnected()
}

// Close disconnects from the broker.
func (s *RealService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		s.client.Disconnect(1000) // 1 second timeout
		s.client = nil
	}
	return nil
}
