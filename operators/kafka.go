// Package operators supplies concrete user operators that register real
// ports with the plan package and talk to real transports.
package operators

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tarungka/flowplan/plan"
)

// KafkaConfig holds the connection details shared by the Kafka operators.
type KafkaConfig struct {
	BootstrapServers string
	Topic            string
	ConsumerGroup    string
}

func (c KafkaConfig) validate() error {
	if c.BootstrapServers == "" || c.Topic == "" {
		return fmt.Errorf("operators: kafka config missing bootstrap_servers or topic")
	}
	return nil
}

// KafkaInputOperator is a root-eligible operator that consumes a single
// Kafka topic and emits records on its output port.
type KafkaInputOperator struct {
	Out plan.OutputPort

	Config KafkaConfig

	client *kgo.Client
}

func (KafkaInputOperator) RootCapable() {}

// Setup connects the consumer client. It does not start consuming —
// consumption is driven by the physical plan, out of this package's scope.
func (k *KafkaInputOperator) Setup(ctx context.Context) error {
	if err := k.Config.validate(); err != nil {
		return err
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(k.Config.BootstrapServers),
		kgo.ConsumeTopics(k.Config.Topic),
		kgo.AllowAutoTopicCreation(),
	}
	if k.Config.ConsumerGroup != "" {
		opts = append(opts, kgo.ConsumerGroup(k.Config.ConsumerGroup), kgo.AutoCommitMarks())
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		log.Err(err).Str("topic", k.Config.Topic).Msg("failed to create kafka consumer")
		return err
	}
	k.client = client
	return nil
}

// Poll fetches the next batch of records, converting each to its raw value
// bytes. Callers drive the poll loop; this operator holds no goroutines.
func (k *KafkaInputOperator) Poll(ctx context.Context) ([][]byte, error) {
	fetches := k.client.PollFetches(ctx)
	if fetches.IsClientClosed() {
		return nil, nil
	}
	if errs := fetches.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("operators: kafka poll errors: %v", errs)
	}
	var records [][]byte
	fetches.EachRecord(func(r *kgo.Record) {
		records = append(records, r.Value)
	})
	return records, nil
}

func (k *KafkaInputOperator) Teardown() error {
	if k.client != nil {
		k.client.Close()
	}
	return nil
}

// KafkaOutputOperator is a non-root operator with one required input port
// that produces every record it receives to a single Kafka topic.
type KafkaOutputOperator struct {
	In plan.InputPort

	Config KafkaConfig

	client *kgo.Client
}

func (k *KafkaOutputOperator) Setup(ctx context.Context) error {
	if err := k.Config.validate(); err != nil {
		return err
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(k.Config.BootstrapServers),
		kgo.DefaultProduceTopic(k.Config.Topic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		log.Err(err).Str("topic", k.Config.Topic).Msg("failed to create kafka producer")
		return err
	}
	k.client = client
	return nil
}

// Produce sends value to the configured topic and blocks until the broker
// acknowledges it.
func (k *KafkaOutputOperator) Produce(ctx context.Context, value []byte) error {
	var produceErr error
	done := make(chan struct{})
	k.client.Produce(ctx, &kgo.Record{Value: value}, func(_ *kgo.Record, err error) {
		produceErr = err
		close(done)
	})
	<-done
	return produceErr
}

func (k *KafkaOutputOperator) Teardown() error {
	if k.client != nil {
		k.client.Close()
	}
	return nil
}
