package app

import (
	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/assignment"
	"courier-dispatch/internal/service/location"
	"courier-dispatch/internal/transport/kafka"
)

func (b *ContainerBuilder) registerProducer(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config) (*kafka.Producer, error) { return b.newProducer(cfg.Kafka.Brokers) },
		func(p *kafka.Producer, cfg *config.Config) *kafka.PositionPublisher {
			return kafka.NewPositionPublisher(p, cfg.Kafka.LocationTopicPrefix)
		},
		func(p *kafka.Producer, cfg *config.Config) *kafka.ResultPublisher {
			return kafka.NewResultPublisher(p, cfg.Kafka.ResultsTopic)
		},
		func(p *kafka.Producer, cfg *config.Config) *kafka.RequestPublisher {
			return kafka.NewRequestPublisher(p, cfg.Kafka.RequestsTopic)
		},
	)
}

func (b *ContainerBuilder) registerLocationConsumer(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, logger logx.Logger, p *location.Processor) (*kafka.Consumer, error) {
			topics := kafka.LocationTopics(cfg.Kafka.LocationTopicPrefix, cfg.Kafka.LocationShards)
			return b.newConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.LocationGroup, topics, positionEvents(p))
		},
	)
}

func (b *ContainerBuilder) registerAssignmentConsumer(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, logger logx.Logger, e *assignment.Engine) (*kafka.Consumer, error) {
			topics := []string{cfg.Kafka.RequestsTopic}
			// a request must end in a published result, so broker outages are waited out
			return b.newConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.AssignmentGroup, topics, assignmentRequests(e),
				kafka.RetryUnavailable())
		},
	)
}

func (b *ContainerBuilder) registerResultReader(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, logger logx.Logger) *kafka.ResultReader {
			return kafka.NewResultReader(logger, cfg.Kafka.Brokers, cfg.Kafka.CommitGroup, cfg.Kafka.ResultsTopic)
		},
	)
}
