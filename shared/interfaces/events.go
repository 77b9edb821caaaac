package interfaces

import (
	"context"

	"edu-game-server/shared/messaging"
)

// SectionEventPublisher публикует события изменения архивации секций.
//
//go:generate mockery --name SectionEventPublisher --output ./mocks --outpkg mocks --case=underscore
type SectionEventPublisher interface {
	PublishSectionEvent(ctx context.Context, payload messaging.SectionEventPayload) error
}
