package session

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// StartSweeper schedules periodic removal of expired session rows on the
// given cron expression. Returns a stop function. Sweeping is hygiene only;
// lazy expiry on read keeps the store correct without it.
func StartSweeper(ctx context.Context, store Sweeper, cronSpec string) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(cronSpec, func() {
		n, err := store.SweepExpired(ctx)
		if err != nil {
			log.Printf("session: sweep: %v", err)
			return
		}
		if n > 0 {
			log.Printf("session: swept %d expired sessions", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("session: sweeper cron %q: %w", cronSpec, err)
	}
	c.Start()
	return func() { c.Stop() }, nil
}
