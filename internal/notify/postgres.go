package notify

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
)

// Channel is the postgres NOTIFY channel the listener subscribes to. The
// migration installs triggers that NOTIFY on it with the table name as
// payload.
const Channel = "table_changed"

// Listener bridges postgres LISTEN/NOTIFY into a Hub. It holds one dedicated
// connection and reconnects with a fixed delay on failure.
type Listener struct {
	connString string
	hub        *Hub
	retryDelay time.Duration
}

func NewListener(connString string, hub *Hub) *Listener {
	return &Listener{connString: connString, hub: hub, retryDelay: 5 * time.Second}
}

// Run blocks listening for notifications until ctx is cancelled. Connection
// failures are logged and retried; they never stop the loop.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("notify: listener error, reconnecting in %s: %v", l.retryDelay, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.connString)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return err
	}
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if n.Payload == "" {
			continue
		}
		l.hub.Publish(n.Payload)
	}
}
