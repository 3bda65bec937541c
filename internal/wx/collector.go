package wx

import (
	"sync"
	"time"

	"github.com/skywatch/metarboard/internal/observability"
	"github.com/skywatch/metarboard/pkg/logger"
)

// Collector retrieves observations for the full partition key-space in
// bounded-concurrency batches, tolerating partial failures
type Collector struct {
	client     *Client
	partitions []string
	batchSize  int
	logger     *logger.Logger
}

// NewCollector creates a new collector over the standard state partitions
func NewCollector(client *Client, batchSize int, log *logger.Logger) *Collector {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Collector{
		client:     client,
		partitions: StatePartitions,
		batchSize:  batchSize,
		logger:     log.Named("wx-collector"),
	}
}

// partitionResult carries one partition's decoded observations
type partitionResult struct {
	partition    string
	observations []Observation
}

// CollectAll fetches every partition and returns the deduplicated set
// of observations keyed by station id. Partition failures contribute an
// empty result and are logged, never fatal. The operation is
// re-entrant: no state survives between calls.
func (c *Collector) CollectAll() map[string]Observation {
	startTime := time.Now()
	now := time.Now()

	merged := make(map[string]Observation)
	var failedPartitions int

	// Chunked fan-out: each group of batchSize partitions is fetched
	// concurrently, groups run sequentially. This bounds peak outbound
	// concurrency without a semaphore.
	for start := 0; start < len(c.partitions); start += c.batchSize {
		end := start + c.batchSize
		if end > len(c.partitions) {
			end = len(c.partitions)
		}
		group := c.partitions[start:end]

		results := make(chan partitionResult, len(group))
		var wg sync.WaitGroup
		for _, partition := range group {
			wg.Add(1)
			go func(partition string) {
				defer wg.Done()
				results <- partitionResult{
					partition:    partition,
					observations: c.collectPartition(partition, now),
				}
			}(partition)
		}
		wg.Wait()
		close(results)

		for result := range results {
			if result.observations == nil {
				failedPartitions++
				continue
			}
			for _, obs := range result.observations {
				mergeObservation(merged, obs)
			}
		}
	}

	observability.PartitionFetchFailures.Add(float64(failedPartitions))
	observability.StationsCollected.Set(float64(len(merged)))

	c.logger.Info("Observation collection completed",
		logger.Int("partitions", len(c.partitions)),
		logger.Int("failed_partitions", failedPartitions),
		logger.Int("stations", len(merged)),
		logger.Duration("duration", time.Since(startTime)))

	return merged
}

// collectPartition fetches and decodes one partition. Returns nil on
// fetch failure so the caller can count it; an empty slice means the
// fetch succeeded with no usable records.
func (c *Collector) collectPartition(partition string, now time.Time) []Observation {
	records, err := c.client.FetchMETARsByState(partition)
	if err != nil {
		c.logger.Warn("Partition fetch failed, continuing without it",
			logger.String("partition", partition),
			logger.Error(err))
		return nil
	}

	observations := make([]Observation, 0, len(records))
	var dropped int
	for _, rec := range records {
		obs, err := DecodeMETAR(rec, now)
		if err != nil {
			dropped++
			continue
		}
		observations = append(observations, obs)
	}

	if dropped > 0 {
		c.logger.Debug("Dropped malformed records",
			logger.String("partition", partition),
			logger.Int("dropped", dropped))
	}

	return observations
}

// mergeObservation inserts obs into the map, keeping the fresher report
// when the station is already present
func mergeObservation(merged map[string]Observation, obs Observation) {
	existing, ok := merged[obs.StationID]
	if !ok || fresher(obs, existing) {
		merged[obs.StationID] = obs
	}
}

// fresher reports whether a should replace b. The zulu token is a
// fixed-width zero-padded numeric string, so lexicographic compare
// orders by report time; an empty token sorts lowest.
func fresher(a, b Observation) bool {
	return a.ObservationZulu > b.ObservationZulu
}
