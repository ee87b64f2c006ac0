package jobs

import (
	"context"
	"time"

	"github.com/google/logger"
	"github.com/robfig/cron/v3"
)

// Reconciler repairs accepted requests whose medicine lost its reservation.
type Reconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

const reconcileTimeout = 2 * time.Minute

// StartReconcileScheduler runs the reconciler on schedule until the returned
// cron is stopped.
func StartReconcileScheduler(schedule string, r Reconciler) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		logger.Info("Running request reconciliation...")
		RunReconcile(r)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func RunReconcile(r Reconciler) int {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()
	repaired, err := r.Reconcile(ctx)
	if err != nil {
		logger.Errorf("Error from reconcile after %d repairs: %v", repaired, err)
		return repaired
	}
	if repaired > 0 {
		logger.Infof("Reconciliation repaired %d medicines", repaired)
	}
	return repaired
}
