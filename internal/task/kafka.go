package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// TaskEvent публикуется при сабмите и оценке задачи.
// Структура должна совпадать с internal/evaluation/event.go
type TaskEvent struct {
	TaskID     string    `json:"taskId"`
	ProjectID  string    `json:"projectId"`
	EmployeeID string    `json:"employeeId"`
	Status     string    `json:"status"`
	GithubLink string    `json:"githubLink,omitempty"`
	Late       bool      `json:"late,omitempty"`
	Score      *float64  `json:"score,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type KafkaProducer interface {
	SendTaskEvent(ctx context.Context, event TaskEvent) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaProducer(brokers []string, topic string) KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &kafkaProducer{
		writer: writer,
		topic:  topic,
	}
}

func (p *kafkaProducer) SendTaskEvent(ctx context.Context, event TaskEvent) error {

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.TaskID),
		Value: eventJSON,
		Time:  time.Now(),
	}

	return p.writer.WriteMessages(ctx, message)
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}
