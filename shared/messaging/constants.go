package messaging

// Exchange Names
const (
	// ProgressExchangeName - topic exchange для событий прогресса и секций.
	ProgressExchangeName = "progress_events_exchange"
	ProgressExchangeType = "topic"
)

// Routing keys
const (
	RoutingKeyProgressUpdated        = "progress.updated"
	RoutingKeySectionArchivalChanged = "section.archival_changed"
)

// AppID - идентификатор отправителя в свойствах сообщения.
const AppID = "edu-game-server"
