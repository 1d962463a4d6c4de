package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

const EventRoundFinished = "round_finished"

const maxRetries = 3

type RoundFinished struct {
	Type       string    `json:"type"`
	MatchID    string    `json:"match_id"`
	Round      int       `json:"round"`
	XName      string    `json:"x_name"`
	OName      string    `json:"o_name"`
	Winner     string    `json:"winner,omitempty"`
	WinnerName string    `json:"winner_name,omitempty"`
	Line       []int     `json:"line,omitempty"`
	Draw       bool      `json:"draw"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}

// Producer sends round events to Kafka. A producer without brokers is
// disabled and drops every event.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return &Producer{topic: topic}, nil
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = maxRetries

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("can't create kafka producer: %w", err)
	}

	return NewProducerWith(producer, topic), nil
}

func NewProducerWith(producer sarama.SyncProducer, topic string) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
	}
}

func (that *Producer) Enabled() bool {
	return that.producer != nil
}

// PublishRoundFinished sends the round keyed by its match so one match's
// rounds stay ordered within a partition.
func (that *Producer) PublishRoundFinished(_ context.Context, record entity.RoundRecord) error {
	if !that.Enabled() {
		return nil
	}

	data, err := json.Marshal(RoundFinished{
		Type:       EventRoundFinished,
		MatchID:    record.MatchID,
		Round:      record.Round,
		XName:      record.XName,
		OName:      record.OName,
		Winner:     record.WinnerMark,
		WinnerName: record.WinnerName,
		Line:       record.Line,
		Draw:       record.IsDraw(),
		Moves:      record.Moves,
		FinishedAt: record.FinishedAt,
	})
	if err != nil {
		return fmt.Errorf("can't marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: that.topic,
		Key:   sarama.StringEncoder(record.MatchID),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err = that.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("can't send event to kafka: %w", err)
	}

	return nil
}

func (that *Producer) Close() error {
	if that.producer != nil {
		return that.producer.Close()
	}
	return nil
}
