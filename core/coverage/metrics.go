package coverage

import "github.com/ethereum/go-ethereum/metrics"

var (
	traceEntryCounter = metrics.NewRegisteredCounter("coverage/trace/entries", nil)
	hitCounter        = metrics.NewRegisteredCounter("coverage/hits", nil)
	strayCounter      = metrics.NewRegisteredCounter("coverage/stray", nil)
	ratioGauge        = metrics.NewRegisteredGaugeFloat64("coverage/ratio", nil)

	scanCacheHitCounter  = metrics.NewRegisteredCounter("coverage/scancache/hit", nil)
	scanCacheMissCounter = metrics.NewRegisteredCounter("coverage/scancache/miss", nil)
)
