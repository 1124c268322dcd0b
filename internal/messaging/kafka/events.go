package kafka

// Topics, в которые checkout публикует события заказов.
const (
	// TopicOrderEvents — основной поток событий заказов из outbox.
	TopicOrderEvents = "checkout.order.events"
	// TopicDeadLetterQueue принимает конверты, которые не удалось
	// доставить после всех ретраев.
	TopicDeadLetterQueue = "checkout.dlq"
)
