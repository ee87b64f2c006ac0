package services

import (
	"context"
	"errors"
	"time"

	"MedShare/apperr"
	"MedShare/cache"
	"MedShare/events"
	"MedShare/metrics"
	"MedShare/store"

	"github.com/google/logger"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Store  store.Store
	Cache  cache.Cache
	Events events.Publisher
	Now    func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func (d Deps) now() time.Time {
	return d.Now().UTC()
}

// storeError converts a store failure into the caller-facing error kind.
func storeError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Upstream(apperr.STORE_UNAVAILABLE, err)
	default:
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperr.Upstream(apperr.STORE_UNAVAILABLE, err)
	}
}

// fail records the failure and hands it back unchanged.
func fail(operation string, err error) error {
	metrics.Failure(operation, apperr.KindOf(err).String())
	return err
}

/*
* Publish the event after the write has committed
* A broker failure is logged, the operation already succeeded
 */
func (d Deps) publish(ctx context.Context, e events.Event) {
	if e.At.IsZero() {
		e.At = d.now()
	}
	if err := d.Events.Publish(ctx, e); err != nil {
		logger.Errorf("Error from publish %s for %s: %v", e.Type, e.EntityID, err)
	}
}

func (d Deps) forget(ctx context.Context, keys ...string) {
	if err := d.Cache.Delete(ctx, keys...); err != nil {
		logger.Errorf("Failed deleting cache keys %v: %v", keys, err)
	}
}

func (d Deps) remember(ctx context.Context, key string, value interface{}) {
	if err := d.Cache.Set(ctx, key, value); err != nil {
		logger.Errorf("Failed caching %s: %v", key, err)
	}
}
