package resolver

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartScheduler runs the sweeper on a cron schedule in-process, for
// deployments without an external trigger. Returns the started cron so the
// caller can Stop it on shutdown.
func StartScheduler(sweeper *Sweeper, spec string, logger *zap.SugaredLogger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := sweeper.Run(ctx, time.Now()); err != nil {
			logger.Errorw("scheduled sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Infow("sweep scheduler started", "spec", spec)
	return c, nil
}
