package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/rosterd/rosterd/core/metrics"
	"github.com/rosterd/rosterd/infra/logger"
)

// InfluxSink writes generation events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordGeneration writes a finished run as a line protocol point.
func (s *InfluxSink) RecordGeneration(rec coremetrics.GenerationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("generation_run").
		AddTag("run_id", rec.RunID).
		AddTag("version", strconv.Itoa(rec.Version)).
		AddTag("component", "generator").
		AddField("assignments", rec.Assignments).
		AddField("filled", rec.Filled).
		AddField("warnings", rec.Warnings).
		AddField("errors", rec.Errors).
		AddField("fairness_score", round3(rec.FairnessScore)).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Completed)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordShortfall writes one under-staffed shift slot.
func (s *InfluxSink) RecordShortfall(rec coremetrics.ShortfallRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("coverage_shortfall").
		AddTag("run_id", rec.RunID).
		AddTag("shift_id", strconv.Itoa(rec.ShiftID)).
		AddTag("component", "generator").
		AddField("missing", rec.Missing).
		AddField("date", rec.Date.Format("2006-01-02")).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
