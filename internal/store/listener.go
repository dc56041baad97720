package store

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ListenChannel is the Postgres NOTIFY channel carrying ledger change pings.
const ListenChannel = "casa_ink_ledger"

const (
	reconnectInterval = 5 * time.Second
	pingInterval      = 90 * time.Second
)

// PgListener holds a dedicated LISTEN connection and wakes the local store
// whenever another process writes the collection. Without it a process only
// sees its own writes.
type PgListener struct {
	connStr    string
	appID      string
	wake       func()
	log        *zap.SugaredLogger
	shutdownCh chan struct{}
	done       chan struct{}
}

// NewPgListener creates a listener that calls wake on every ledger ping
// addressed to appID.
func NewPgListener(connStr, appID string, wake func(), log *zap.SugaredLogger) *PgListener {
	return &PgListener{
		connStr:    connStr,
		appID:      appID,
		wake:       wake,
		log:        log,
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins listening in a background goroutine.
func (l *PgListener) Start(ctx context.Context) {
	go l.listen(ctx)
	l.log.Info("ledger notification listener started")
}

// Stop shuts the listener down and waits for the loop to exit.
func (l *PgListener) Stop() {
	close(l.shutdownCh)
	<-l.done
	l.log.Info("ledger notification listener stopped")
}

func (l *PgListener) listen(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		default:
			l.connectAndListen(ctx)
		}

		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
			l.log.Info("reconnecting ledger notification listener")
		}
	}
}

func (l *PgListener) connectAndListen(ctx context.Context) {
	listener := pq.NewListener(l.connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.log.Warnf("listener event error: %v", err)
		}
		switch ev {
		case pq.ListenerEventConnected, pq.ListenerEventReconnected:
			l.log.Infof("connected to notification channel %s", ListenChannel)
		case pq.ListenerEventDisconnected:
			l.log.Warn("disconnected from notification channel")
		case pq.ListenerEventConnectionAttemptFailed:
			l.log.Warnf("notification connection attempt failed: %v", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(ListenChannel); err != nil {
		l.log.Errorf("listen on channel %s: %v", ListenChannel, err)
		return
	}

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case n := <-listener.Notify:
			if n == nil {
				// connection lost, reconnect
				return
			}
			if n.Extra != "" && n.Extra != l.appID {
				continue
			}
			l.wake()
		case <-time.After(pingInterval):
			go func() {
				if err := listener.Ping(); err != nil {
					l.log.Warnf("listener ping failed: %v", err)
				}
			}()
		}
	}
}
