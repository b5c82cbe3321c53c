package weather

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CachingSource serves observations from a Store while they are fresh and
// falls through to the wrapped source otherwise.
type CachingSource struct {
	source ObservationSource
	store  Store
	now    func() time.Time
}

func NewCachingSource(source ObservationSource, store Store) *CachingSource {
	return &CachingSource{
		source: source,
		store:  store,
		now:    time.Now,
	}
}

func (c *CachingSource) Name() string {
	return c.source.Name() + "+cache"
}

// Fetch implements ObservationSource.
func (c *CachingSource) Fetch(ctx context.Context, loc Location) ([]Observation, error) {
	if obs, err := c.store.GetFresh(loc, c.now()); err == nil {
		return obs, nil
	}
	return c.fetchAndStore(ctx, loc)
}

// Refresh fetches observations for loc regardless of cache state and stores them.
func (c *CachingSource) Refresh(ctx context.Context, loc Location) error {
	_, err := c.fetchAndStore(ctx, loc)
	return err
}

func (c *CachingSource) fetchAndStore(ctx context.Context, loc Location) ([]Observation, error) {
	obs, err := c.source.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		log.Printf("WARN: %s returned no observations for %s", c.source.Name(), loc.Name)
		return nil, fmt.Errorf("%w: no observations for %s", ErrDataUnavailable, loc.Name)
	}

	c.store.SaveObservations(loc, obs, c.now())
	return obs, nil
}
