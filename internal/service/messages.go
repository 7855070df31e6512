package service

import (
	"context"
	"strings"

	"cryptofolio/internal/models"

	"github.com/sirupsen/logrus"
)

type MessageService struct {
	store MessageStore
	clock Clock
	log   *logrus.Logger
}

func NewMessageService(store MessageStore, clock Clock, log *logrus.Logger) *MessageService {
	return &MessageService{store: store, clock: clock, log: log}
}

// List returns one page of messages matching f, newest first. A page past
// the end yields no records.
func (s *MessageService) List(ctx context.Context, f models.MessageFilter, page, size int) (Page[models.Message], error) {
	limit, offset, err := pageBounds(page, size)
	if err != nil {
		return Page[models.Message]{}, err
	}
	total, err := s.store.CountMessages(ctx, f)
	if err != nil {
		return Page[models.Message]{}, err
	}
	records := []models.Message{}
	if offset < total {
		if records, err = s.store.ListMessages(ctx, f, limit, offset); err != nil {
			return Page[models.Message]{}, err
		}
	}
	return Page[models.Message]{Total: total, Pages: pageCount(total, size), Current: page, Records: records}, nil
}

func (s *MessageService) Get(ctx context.Context, id int64) (*models.Message, error) {
	m, err := s.store.GetMessage(ctx, id)
	if err != nil {
		return nil, notFound(err, "message %d", id)
	}
	return m, nil
}

func (s *MessageService) MarkRead(ctx context.Context, id int64) error {
	if err := s.store.MarkMessageRead(ctx, id); err != nil {
		return notFound(err, "message %d", id)
	}
	return nil
}

func (s *MessageService) prepare(m *models.Message) error {
	if strings.TrimSpace(m.CryptoType) == "" {
		return invalidf("cryptoType is required")
	}
	if strings.TrimSpace(m.Content) == "" {
		return invalidf("content is required")
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.clock.Now()
	}
	return nil
}

// Save stores one message. A missing creation time defaults to now.
func (s *MessageService) Save(ctx context.Context, m *models.Message) error {
	if err := s.prepare(m); err != nil {
		return err
	}
	return s.store.CreateMessage(ctx, m)
}

// SaveBatch stores every valid message and returns the saved ones. Invalid
// or failing items are logged and counted.
func (s *MessageService) SaveBatch(ctx context.Context, msgs []models.Message) ([]models.Message, BatchResult, error) {
	if len(msgs) == 0 {
		return nil, BatchResult{}, invalidf("batch is empty")
	}
	res := BatchResult{Attempted: len(msgs)}
	saved := make([]models.Message, 0, len(msgs))
	for i := range msgs {
		m := msgs[i]
		if err := s.Save(ctx, &m); err != nil {
			s.log.Warnf("skip message %d: %v", i, err)
			res.Failed++
			continue
		}
		saved = append(saved, m)
		res.Succeeded++
	}
	return saved, res, nil
}
