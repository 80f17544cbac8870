package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/oks-citadel/apply-notify/internal/pkg/config"
	"github.com/oks-citadel/apply-notify/internal/pkg/goroutine"
	"github.com/oks-citadel/apply-notify/internal/pkg/idempotency"
	"github.com/oks-citadel/apply-notify/internal/pkg/instrument"
	"github.com/oks-citadel/apply-notify/internal/pkg/messaging"
	"github.com/oks-citadel/apply-notify/internal/pkg/uid"
	"github.com/oks-citadel/apply-notify/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	idemp idempotency.Idempotency,
	uc ucConsumer,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, idemp: idemp, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	var consumers = []struct {
		name               string
		topic              string // destination where publisher sent message
		nsqConsumerName    string // for nsq
		natsConsumerName   string // for nats
		kafkaConsumerName  string // for kafka
		pubsubConsumerName string // for google pubusb
		handler            messaging.Handler
	}{
		{
			name:               event.PushDispatchConsumerNotification,
			topic:              event.PushDispatchDestination,
			nsqConsumerName:    event.PushDispatchConsumerNotification,
			natsConsumerName:   event.PushDispatchConsumerNotification,
			kafkaConsumerName:  event.PushDispatchConsumerNotification,
			pubsubConsumerName: event.PushDispatchConsumerNotification,
			handler:            mqHandler.PushDispatchNotification,
		},
		{
			name:               event.EmailDispatchConsumerNotification,
			topic:              event.EmailDispatchDestination,
			nsqConsumerName:    event.EmailDispatchConsumerNotification,
			natsConsumerName:   event.EmailDispatchConsumerNotification,
			kafkaConsumerName:  event.EmailDispatchConsumerNotification,
			pubsubConsumerName: event.EmailDispatchConsumerNotification,
			handler:            mqHandler.EmailDispatchNotification,
		},
		{
			name:               event.ApplicationStatusConsumerNotification,
			topic:              event.ApplicationStatusDestination,
			nsqConsumerName:    event.ApplicationStatusConsumerNotification,
			natsConsumerName:   event.ApplicationStatusConsumerNotification,
			kafkaConsumerName:  event.ApplicationStatusConsumerNotification,
			pubsubConsumerName: event.ApplicationStatusConsumerNotification,
			handler:            mqHandler.ApplicationStatusNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.nsqConsumerName),
					messaging.WithQueueGroup(consumer.natsConsumerName),
					messaging.WithGroup(consumer.kafkaConsumerName),
					messaging.WithSubscription(consumer.pubsubConsumerName),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
