package back

import (
	"context"

	"github.com/pkg/errors"
)

func (b *Back) LoadFixtures(ctx context.Context) error {
	fixtures := []struct {
		name, shortCode string
		teamSize        float64
	}{
		{"Duel", "1v1", 1},
		{"Doubles", "2v2", 2},
		{"Standard", "5v5", 5},
	}

	for _, v := range fixtures {
		if _, err := b.CreateMode(ctx, v.name, v.shortCode, v.teamSize); err != nil {
			return errors.Wrapf(err, "unable to create mode %s", v.shortCode)
		}
	}

	return nil
}
