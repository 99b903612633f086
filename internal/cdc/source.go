package cdc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ReplicationChannel is the channel a publishing trigger NOTIFYs on with
// one JSON-encoded CDCEvent payload per row change.
const ReplicationChannel = "excalibase_cdc"

const (
	maxListenRetries  = 5
	listenBaseDelay   = 1 * time.Second
	acquireTimeout    = 10 * time.Second
	notifyWaitTimeout = 5 * time.Second
)

// Source runs the LISTEN/NOTIFY loop that decodes incoming payloads and
// routes them into a Bus. Acquiring its LISTEN connection is retried
// with exponential backoff; once listening, a failed wait is logged and
// retried on the same connection, which is not reacquired.
type Source struct {
	pool   *pgxpool.Pool
	bus    *Bus
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSource creates a Source bound to pool and bus.
func NewSource(pool *pgxpool.Pool, bus *Bus) *Source {
	ctx, cancel := context.WithCancel(context.Background())
	return &Source{pool: pool, bus: bus, ctx: ctx, cancel: cancel}
}

// Start begins the LISTEN loop in a background goroutine.
func (s *Source) Start() {
	go s.listen()
	log.Info().Str("channel", ReplicationChannel).Msg("CDC LISTEN started")
}

// Stop cancels the LISTEN loop and marks the bus as no longer running.
func (s *Source) Stop() {
	s.cancel()
	s.bus.Stop()
}

func (s *Source) listen() {
	conn, err := s.acquireWithBackoff()
	if err != nil {
		log.Error().Err(err).Msg("giving up on CDC LISTEN after all retries")
		return
	}
	defer conn.Release()

	if _, err := conn.Exec(s.ctx, "LISTEN "+ReplicationChannel); err != nil {
		log.Error().Err(err).Msg("failed to execute LISTEN for CDC channel")
		return
	}

	for {
		select {
		case <-s.ctx.Done():
			log.Info().Msg("stopping CDC listener")
			return
		default:
			s.waitAndRoute(conn)
		}
	}
}

// acquireWithBackoff tries pool.Acquire up to maxListenRetries times,
// sleeping 1s, 2s, 4s, 8s between attempts.
func (s *Source) acquireWithBackoff() (*pgxpool.Conn, error) {
	var conn *pgxpool.Conn
	var err error

	for attempt := 1; attempt <= maxListenRetries; attempt++ {
		if s.ctx.Err() != nil {
			return nil, s.ctx.Err()
		}

		acquireCtx, cancel := context.WithTimeout(s.ctx, acquireTimeout)
		conn, err = s.pool.Acquire(acquireCtx)
		cancel()
		if err == nil {
			return conn, nil
		}

		log.Warn().Err(err).Int("attempt", attempt).Int("maxRetries", maxListenRetries).
			Msg("failed to acquire connection for CDC LISTEN, retrying")

		if attempt < maxListenRetries {
			delay := listenBaseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-s.ctx.Done():
				return nil, s.ctx.Err()
			}
		}
	}
	return nil, err
}

func (s *Source) waitAndRoute(conn *pgxpool.Conn) {
	ctx, cancel := context.WithTimeout(s.ctx, notifyWaitTimeout)
	defer cancel()

	notification, err := conn.Conn().WaitForNotification(ctx)
	if err != nil {
		if s.ctx.Err() != nil || ctx.Err() == context.DeadlineExceeded {
			return
		}
		log.Error().Err(err).Msg("error waiting for CDC notification")
		time.Sleep(1 * time.Second)
		return
	}

	event, err := decodeNotification(notification)
	if err != nil {
		log.Error().Err(err).Str("payload", notification.Payload).Msg("failed to decode CDC notification")
		return
	}

	s.bus.HandleCDCEvent(event)
}

func decodeNotification(notification *pgconn.Notification) (CDCEvent, error) {
	var event CDCEvent
	err := json.Unmarshal([]byte(notification.Payload), &event)
	return event, err
}
