package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"habitflow/internal/config"
	"habitflow/internal/domain/entity"
)

// Event types published to the events topic.
const (
	EventTypeXPGranted       = "xp.granted"
	EventTypeStreakMilestone = "streak.milestone"
)

// Event is the envelope for all published events.
type Event struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// XPGrantedPayload carries an XP grant.
type XPGrantedPayload struct {
	UserID        string `json:"user_id"`
	ActionKey     string `json:"action_key"`
	XPGranted     int    `json:"xp_granted"`
	TotalXP       int    `json:"total_xp"`
	PreviousLevel int    `json:"previous_level"`
	CurrentLevel  int    `json:"current_level"`
	LeveledUp     bool   `json:"leveled_up"`
}

// StreakMilestonePayload carries a streak milestone.
type StreakMilestonePayload struct {
	UserID  string `json:"user_id"`
	HabitID string `json:"habit_id"`
	Streak  int    `json:"streak"`
}

// Producer publishes engine events to Kafka
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg *config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    10,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}

	return &Producer{writer: writer}
}

func (p *Producer) publish(ctx context.Context, eventType string, key uuid.UUID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Payload:   data,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key.String()),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	log.Printf("Published %s event for user_id: %s", eventType, key)
	return nil
}

// PublishXPGranted publishes an XP grant event.
func (p *Producer) PublishXPGranted(ctx context.Context, grant *entity.XPGrant) error {
	return p.publish(ctx, EventTypeXPGranted, grant.UserID, XPGrantedPayload{
		UserID:        grant.UserID.String(),
		ActionKey:     grant.ActionKey,
		XPGranted:     grant.XPGranted,
		TotalXP:       grant.TotalXP,
		PreviousLevel: grant.PreviousLevel,
		CurrentLevel:  grant.CurrentLevel,
		LeveledUp:     grant.LeveledUp,
	})
}

// PublishStreakMilestone publishes a streak milestone event.
func (p *Producer) PublishStreakMilestone(ctx context.Context, userID, habitID uuid.UUID, streak int) error {
	return p.publish(ctx, EventTypeStreakMilestone, userID, StreakMilestonePayload{
		UserID:  userID.String(),
		HabitID: habitID.String(),
		Streak:  streak,
	})
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
