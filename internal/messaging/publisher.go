package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edu-game-server/shared/interfaces"
	sharedMessaging "edu-game-server/shared/messaging"
	sharedModels "edu-game-server/shared/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	publishAttempts = 3
	publishTimeout  = 10 * time.Second
	// ProjectorName - имя проектора в метриках и логах.
	ProjectorName = "rabbitmq_progress_events"
)

// amqpChannel - часть *amqp.Channel, нужная паблишеру.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// EventPublisher публикует события прогресса и секций в topic exchange.
// Реализует interfaces.ProgressProjector и interfaces.SectionEventPublisher.
type EventPublisher struct {
	channel  amqpChannel
	exchange string
	backoff  time.Duration
	logger   *zap.Logger
}

var (
	_ interfaces.ProgressProjector     = (*EventPublisher)(nil)
	_ interfaces.SectionEventPublisher = (*EventPublisher)(nil)
)

// NewRabbitMQEventPublisher открывает канал и объявляет exchange событий.
// Канал закрывается вместе с соединением.
func NewRabbitMQEventPublisher(conn *amqp.Connection, logger *zap.Logger) (*EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("event publisher: не удалось открыть канал: %w", err)
	}
	err = ch.ExchangeDeclare(
		sharedMessaging.ProgressExchangeName,
		sharedMessaging.ProgressExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("event publisher: не удалось объявить exchange '%s': %w", sharedMessaging.ProgressExchangeName, err)
	}
	logger.Info("Event exchange declared", zap.String("exchange", sharedMessaging.ProgressExchangeName))
	return newEventPublisher(ch, sharedMessaging.ProgressExchangeName, logger), nil
}

func newEventPublisher(ch amqpChannel, exchange string, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{
		channel:  ch,
		exchange: exchange,
		backoff:  100 * time.Millisecond,
		logger:   logger.Named("EventPublisher"),
	}
}

func (p *EventPublisher) Name() string { return ProjectorName }

// Project публикует progress.updated для слитого прогресса.
func (p *EventPublisher) Project(ctx context.Context, entry sharedModels.LeaderboardEntry) error {
	payload := sharedMessaging.ProgressUpdatedPayload{
		PlayerID:           entry.PlayerID,
		Coins:              entry.Coins,
		Score:              entry.Score,
		CurrentStage:       entry.CurrentStage,
		CompletedQuests:    entry.CompletedQuests,
		ProgressPercentage: entry.ProgressPercentage,
		UpdatedAt:          entry.UpdatedAt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации ProgressUpdatedPayload для игрока %s: %w", entry.PlayerID, err)
	}
	if err := p.publishMessage(ctx, sharedMessaging.RoutingKeyProgressUpdated, body); err != nil {
		return fmt.Errorf("ошибка публикации progress.updated для игрока %s: %w", entry.PlayerID, err)
	}
	return nil
}

// PublishSectionEvent публикует section.archival_changed.
func (p *EventPublisher) PublishSectionEvent(ctx context.Context, payload sharedMessaging.SectionEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации SectionEventPayload: %w", err)
	}
	if err := p.publishMessage(ctx, sharedMessaging.RoutingKeySectionArchivalChanged, body); err != nil {
		return fmt.Errorf("ошибка публикации события секции %s/%s: %w", payload.TeacherID, payload.Section, err)
	}
	return nil
}

// publishMessage публикует сообщение с повторами.
func (p *EventPublisher) publishMessage(ctx context.Context, routingKey string, body []byte) error {
	if p.channel == nil {
		return errors.New("канал RabbitMQ не инициализирован")
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			p.exchange,
			routingKey,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        sharedMessaging.AppID,
			},
		)
		if err == nil {
			p.logger.Debug("Message published", zap.String("routing_key", routingKey), zap.Int("attempt", attempt))
			return nil
		}
		p.logger.Warn("Publish attempt failed", zap.String("routing_key", routingKey), zap.Int("attempt", attempt), zap.Error(err))
		if attempt == publishAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * p.backoff):
		}
	}
	return fmt.Errorf("не удалось опубликовать сообщение после %d попыток: %w", publishAttempts, err)
}
