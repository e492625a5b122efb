package back

import (
	"context"
	"sync"
	"time"

	"scrim/internal/config"
	"scrim/internal/matchmaking"
	"scrim/internal/util"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

// Back is the Match Store: it owns players, modes, queues, matches and
// ratings and is the only thing allowed to touch the database.
type Back struct {
	db            *sqlx.DB
	config        *config.Config
	notifications chan Notification
}

var _ matchmaking.Store = (*Back)(nil)

func New(sqlDriver string, sqlDSN string, conf *config.Config) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	db, err := sqlx.Connect(sqlDriver, sqlDSN)
	if err != nil {
		return nil, err
	}

	// A single connection serializes transactions, queue reads and removals
	// can't interleave between two match formations.
	db.SetMaxOpenConns(1)

	return &Back{
		db:            db,
		config:        conf,
		notifications: make(chan Notification, 256),
	}, nil
}

func (b *Back) Close() error {
	return b.db.Close()
}

// GetNotificationsChan returns the channel the bot has to read to deliver
// notifications.
func (b *Back) GetNotificationsChan() <-chan Notification {
	return b.notifications
}

func (b *Back) Run(wg *sync.WaitGroup, done <-chan struct{}) {
	wg.Add(1)
	defer wg.Done()
	log.Info("starting Back dæmon")

	for {
		if err := b.runPeriodicTasks(); err != nil {
			log.Errorf("runPeriodicTasks: %s", err)
		}

		select {
		case <-time.After(b.config.MatchmakingInterval):
		case <-done:
			return
		}
	}
}

func (b *Back) transaction(ctx context.Context, cb util.TransactionCallback) error {
	return util.Transaction(ctx, b.db, cb)
}

// send queues notifications for the bot, it must only be called once the
// transaction that produced them has been committed.
func (b *Back) send(notifs ...Notification) {
	for _, notif := range notifs {
		if notif.Recipient == "" {
			log.Debugf("skipping notification without recipient: %s", notif.String())
			continue
		}

		select {
		case b.notifications <- notif:
		default:
			log.Warnf("notification queue full, dropping: %s", notif.String())
		}
	}
}
