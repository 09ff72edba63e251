package travel

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/dayplanner/backend/internal/metrics"
)

type Options struct {
	Timeout    time.Duration
	CacheSize  int
	RatePerSec float64
	Shared     SharedStore
	Logger     zerolog.Logger
}

// Service is the caching Provider in front of a Backend.
type Service struct {
	backend Backend
	cache   *Cache
	group   singleflight.Group
	limiter *rate.Limiter
	timeout time.Duration
	shared  SharedStore
	log     zerolog.Logger
}

func NewService(backend Backend, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	s := &Service{
		backend: backend,
		cache:   NewCache(opts.CacheSize),
		timeout: opts.Timeout,
		shared:  opts.Shared,
		log:     opts.Logger.With().Str("component", "travel").Str("backend", backend.Name()).Logger(),
	}
	if opts.RatePerSec > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}
	return s
}

func (s *Service) Backend() string {
	return s.backend.Name()
}

func (s *Service) CacheLen() int {
	return s.cache.Len()
}

func (s *Service) Lookup(ctx context.Context, origin, destination string, mode Mode) Estimate {
	k := cacheKey{origin: origin, destination: destination, mode: mode}
	if e, ok := s.cache.get(k); ok {
		metrics.TravelLookups.WithLabelValues(s.backend.Name(), "hit").Inc()
		return e
	}

	v, _, _ := s.group.Do(k.String(), func() (any, error) {
		if e, ok := s.cache.get(k); ok {
			return e, nil
		}
		e := s.resolve(ctx, k)
		if s.cache.put(k, e) {
			metrics.TravelCacheEvictions.Inc()
			s.log.Debug().Int("entries", s.cache.Len()).Msg("travel cache rotated, oldest generation dropped")
		}
		metrics.TravelCacheEntries.Set(float64(s.cache.Len()))
		return e, nil
	})
	return v.(Estimate)
}

// resolve ignores caller cancellation; only the backend timeout applies.
func (s *Service) resolve(ctx context.Context, k cacheKey) Estimate {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	name := s.backend.Name()
	if s.shared != nil {
		e, ok, err := s.shared.Get(cctx, k.String())
		if err != nil {
			s.log.Debug().Err(err).Msg("shared travel cache read failed")
		} else if ok {
			metrics.TravelLookups.WithLabelValues(name, "shared_hit").Inc()
			return e
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(cctx); err != nil {
			metrics.TravelLookups.WithLabelValues(name, "fallback").Inc()
			s.log.Warn().Err(err).Str("origin", k.origin).Str("destination", k.destination).Msg("travel rate limit wait failed")
			return Fallback()
		}
	}

	start := time.Now()
	e, err := s.backend.Directions(cctx, k.origin, k.destination, k.mode)
	metrics.TravelLatency.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	if err == nil && !valid(e) {
		err = ErrUnavailable
	}
	if err != nil {
		metrics.TravelLookups.WithLabelValues(name, "fallback").Inc()
		s.log.Warn().Err(err).Str("origin", k.origin).Str("destination", k.destination).Str("mode", string(k.mode)).Msg("travel lookup failed, using fallback")
		return Fallback()
	}
	if e.Source == "" {
		e.Source = name
	}
	metrics.TravelLookups.WithLabelValues(name, "ok").Inc()

	if s.shared != nil {
		if err := s.shared.Set(cctx, k.String(), e); err != nil {
			s.log.Debug().Err(err).Msg("shared travel cache write failed")
		}
	}
	return e
}
