package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/2beens/corosched/internal/coros"
	"github.com/2beens/corosched/internal/telemetry/tracing"
	"github.com/2beens/corosched/internal/workout"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	thresholdsCacheKey = "profile::thresholds"
	// threshold values change rarely (after a test or a settings edit), an
	// hour of staleness only shifts encoded percentages by a rounding step
	thresholdsCacheTTLSeconds = 3600
)

// Service reads the athlete's physiological baselines from the account
// profile. The intensity codec needs them for every percentage computation,
// so the result is cached to avoid a remote call per encoded step.
type Service struct {
	client *coros.Client
	cache  *freecache.Cache
}

func NewService(client *coros.Client, cache *freecache.Cache) *Service {
	return &Service{
		client: client,
		cache:  cache,
	}
}

type accountData struct {
	ZoneData struct {
		MaxHR     int `json:"maxHr"`
		RestingHR int `json:"rhr"`
		LTHR      int `json:"lthr"`
		LTSP      int `json:"ltsp"`
	} `json:"zoneData"`
}

// Thresholds returns the athlete's zone baselines, from cache when fresh.
func (s *Service) Thresholds(ctx context.Context) (_ workout.Thresholds, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profile.thresholds")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if cached, err := s.cache.Get([]byte(thresholdsCacheKey)); err == nil {
		var th workout.Thresholds
		if err := json.Unmarshal(cached, &th); err == nil {
			return th, nil
		}
		log.Warnf("discarding undecodable cached thresholds: %s", cached)
	}

	var data accountData
	if err := s.client.Get(ctx, "account/query", nil, &data); err != nil {
		return workout.Thresholds{}, fmt.Errorf("query account: %w", err)
	}

	th := workout.Thresholds{
		MaxHR:     data.ZoneData.MaxHR,
		RestingHR: data.ZoneData.RestingHR,
		LTHR:      data.ZoneData.LTHR,
		LTSP:      data.ZoneData.LTSP,
	}

	if encoded, err := json.Marshal(th); err == nil {
		if err := s.cache.Set([]byte(thresholdsCacheKey), encoded, thresholdsCacheTTLSeconds); err != nil {
			log.Errorf("cache thresholds: %s", err)
		}
	}

	log.Debugf(
		"thresholds loaded: maxHr=%d rhr=%d lthr=%d ltsp=%d",
		th.MaxHR, th.RestingHR, th.LTHR, th.LTSP,
	)
	return th, nil
}

// Invalidate drops the cached thresholds so the next read hits the backend.
func (s *Service) Invalidate() {
	s.cache.Del([]byte(thresholdsCacheKey))
}
