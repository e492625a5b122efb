package back

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

func (b *Back) runPeriodicTasks() error {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.MatchmakingInterval)
	defer cancel()

	if err := b.pruneExpiredBans(ctx); err != nil {
		return err
	}

	return b.formAllMatches(ctx)
}

// formAllMatches forms matches in every mode, a failure in one mode does
// not prevent the others from running.
func (b *Back) formAllMatches(ctx context.Context) error {
	modes, err := b.GetModes(ctx)
	if err != nil {
		return err
	}

	for _, mode := range modes {
		if _, err := b.formMatches(ctx, mode); err != nil {
			log.WithField("mode", mode.ShortCode).Errorf("unable to form matches: %s", err)
		}
	}

	return nil
}

func (b *Back) pruneExpiredBans(ctx context.Context) error {
	return b.transaction(ctx, func(tx *sqlx.Tx) error {
		n, err := pruneExpiredBans(tx, time.Now())
		if err != nil {
			return err
		}

		if n > 0 {
			log.Infof("pruned %d expired ban(s)", n)
		}

		return nil
	})
}
