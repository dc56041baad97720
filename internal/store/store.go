// Package store is the narrow persistence boundary of the ledger: append,
// remove and ordered live subscription over the transaction collection.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cauiki/casa-ink-financeiro/internal/model"
)

// ErrNotFound is returned (wrapped in a WriteError) when removing an id
// that is not in the collection.
var ErrNotFound = errors.New("transaction not found")

// WriteError marks a create or delete rejected by the store.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// DecodeError marks a persisted row missing a required field. Rows are never
// silently delivered with zero values for required fields.
type DecodeError struct {
	ID    string
	Field string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("store: decode transaction %s: missing %s", e.ID, e.Field)
}

type subscriber struct {
	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// Store implements the record store over Postgres. Every write also lands an
// outbox event in the same transaction; a poller publishes those to Kafka.
type Store struct {
	db     *gorm.DB
	writer *kafka.Writer
	appID  string
	log    *zap.SugaredLogger

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

// New constructs a Store scoped to appID. writer may be nil when the process
// does not publish outbox events (the API server leaves that to the poller).
func New(db *gorm.DB, w *kafka.Writer, appID string, log *zap.SugaredLogger) *Store {
	return &Store{
		db:     db,
		writer: w,
		appID:  appID,
		log:    log,
		subs:   make(map[*subscriber]struct{}),
	}
}

// Append durably persists a new transaction and returns its store-assigned
// id. The createdAt stamp is assigned here, never taken from the caller.
func (s *Store) Append(ctx context.Context, t *model.Transaction) (string, error) {
	t.ID = uuid.NewString()
	t.AppID = s.appID
	t.CreatedAt = time.Time{} // force store clock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		payload, _ := json.Marshal(t)
		evt := &model.LedgerEvent{
			AppID:         s.appID,
			EventType:     model.EventTransactionCreated,
			TransactionID: t.ID,
			Payload:       string(payload),
		}
		return tx.Create(evt).Error
	})
	if err != nil {
		return "", &WriteError{Op: "append", Err: err}
	}
	s.notifyPeers(ctx)
	s.Wakeup()
	return t.ID, nil
}

// Remove deletes a transaction by id. Removing an unknown id is an error;
// callers gate repeats with user confirmation, not retries.
func (s *Store) Remove(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND app_id = ?", id, s.appID).Delete(&model.Transaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		payload, _ := json.Marshal(map[string]string{"id": id})
		evt := &model.LedgerEvent{
			AppID:         s.appID,
			EventType:     model.EventTransactionDeleted,
			TransactionID: id,
			Payload:       string(payload),
		}
		return tx.Create(evt).Error
	})
	if err != nil {
		return &WriteError{Op: "remove", Err: err}
	}
	s.notifyPeers(ctx)
	s.Wakeup()
	return nil
}

// Snapshot returns the full collection ordered by createdAt descending.
func (s *Store) Snapshot(ctx context.Context) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := s.db.WithContext(ctx).
		Where("app_id = ?", s.appID).
		Order("created_at DESC, id DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	for i := range txs {
		if err := decode(&txs[i]); err != nil {
			return nil, err
		}
	}
	return txs, nil
}

func decode(t *model.Transaction) error {
	switch {
	case t.ClientName == "":
		return &DecodeError{ID: t.ID, Field: "clientName"}
	case t.Artist == "":
		return &DecodeError{ID: t.ID, Field: "artist"}
	case t.CreatedAt.IsZero():
		return &DecodeError{ID: t.ID, Field: "createdAt"}
	case t.UserID == "":
		return &DecodeError{ID: t.ID, Field: "userId"}
	}
	return nil
}

// SubscribeOrdered opens a live subscription over the ordered collection.
// onChange receives the complete current snapshot once immediately and again
// after every change; onErr receives read failures without ending the
// subscription. Each subscriber is serialized: it never observes two
// snapshots concurrently. The returned cancel func synchronously stops
// delivery; no callback fires after it returns.
func (s *Store) SubscribeOrdered(onChange func([]model.Transaction), onErr func(error)) (cancel func()) {
	sub := &subscriber{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	sub.wg.Add(1)
	go func() {
		defer sub.wg.Done()
		for {
			snap, err := s.Snapshot(context.Background())
			select {
			case <-sub.done:
				return
			default:
			}
			if err != nil {
				onErr(err)
			} else {
				onChange(snap)
			}
			select {
			case <-sub.done:
				return
			case <-sub.wake:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, sub)
			s.mu.Unlock()
			close(sub.done)
			sub.wg.Wait()
		})
	}
}

// Wakeup schedules a fresh snapshot for every subscriber. Called after local
// writes and by the Postgres listener when another process changed the
// collection. Signals coalesce while a subscriber is mid-delivery.
func (s *Store) Wakeup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		select {
		case sub.wake <- struct{}{}:
		default:
		}
	}
}

// notifyPeers pings other processes through NOTIFY so their subscribers
// re-query. Best effort: a missed ping only delays convergence until the
// next change.
func (s *Store) notifyPeers(ctx context.Context) {
	if s.db.Dialector.Name() != "postgres" {
		return
	}
	if err := s.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", ListenChannel, s.appID).Error; err != nil {
		s.log.Warnf("pg_notify: %v", err)
	}
}

// PollEvents pulls unprocessed outbox events.
func (s *Store) PollEvents(ctx context.Context, limit int) ([]model.LedgerEvent, error) {
	var evts []model.LedgerEvent
	err := s.db.WithContext(ctx).
		Where("processed = false AND app_id = ?", s.appID).
		Order("created_at").Limit(limit).Find(&evts).Error
	return evts, err
}

// MarkEventProcessed sets the processed flag.
func (s *Store) MarkEventProcessed(ctx context.Context, id uint64) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&model.LedgerEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{"processed": true, "processed_at": &now}).Error
}

// PublishEvent sends an outbox event to Kafka.
func (s *Store) PublishEvent(ctx context.Context, evt model.LedgerEvent) error {
	msg := kafka.Message{
		Key:   []byte(evt.TransactionID),
		Value: []byte(evt.Payload),
		Time:  time.Now(),
	}
	return s.writer.WriteMessages(ctx, msg)
}
