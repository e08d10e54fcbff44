package events

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/drivehub/rental-marketplace/internal/models"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is the payload published on booking lifecycle changes.
type BookingEvent struct {
	Event     string         `json:"event"`
	Booking   models.Booking `json:"booking"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher publishes booking lifecycle events over MQTT. A nil Publisher is
// valid and publishes nothing, so event delivery stays optional.
type Publisher struct {
	client mqtt.Client
}

// NewPublisher connects to the broker and returns a publisher. An empty
// broker URL returns a nil publisher.
func NewPublisher(broker string) (*Publisher, error) {
	if broker == "" {
		return nil, nil
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("rental-marketplace").
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout for broker %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect failed: %w", err)
	}
	return &Publisher{client: client}, nil
}

// BookingCreated publishes a booking.created event.
func (p *Publisher) BookingCreated(booking models.Booking) {
	p.publish(EventBookingCreated, booking)
}

// BookingStatusChanged publishes a booking.status_changed event.
func (p *Publisher) BookingStatusChanged(booking models.Booking) {
	p.publish(EventBookingStatusChanged, booking)
}

func (p *Publisher) publish(event string, booking models.Booking) {
	if p == nil || p.client == nil {
		return
	}
	payload, err := json.Marshal(BookingEvent{
		Event:     event,
		Booking:   booking,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.WithError(err).Error("Failed to marshal booking event")
		return
	}
	topic := fmt.Sprintf("rental/bookings/%d", booking.AgencyID)
	token := p.client.Publish(topic, 1, false, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"topic":      topic,
				"booking_id": booking.BookingID,
			}).Error("Failed to publish booking event")
		}
	}()
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p == nil || p.client == nil {
		return
	}
	p.client.Disconnect(250)
}
