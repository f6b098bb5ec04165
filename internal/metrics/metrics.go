package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "confirm"

// Label names
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelField   = "field"
	LabelOutcome = "outcome"
	LabelResult  = "result"
	LabelKind    = "kind"
	LabelSource  = "source"
)

// Outcomes recorded on ConfirmationsTotal
const (
	OutcomeParsed   = "parsed"
	OutcomeRejected = "rejected"
)

// Sources accepted as the source label; anything else is counted as SourceOther
const (
	SourceAPI    = "api"
	SourceWeb    = "web"
	SourceImport = "import"
	SourceOther  = "other"
)

// SourceLabel maps a submission source onto the bounded label set
func SourceLabel(source string) string {
	switch source {
	case SourceAPI, SourceWeb, SourceImport:
		return source
	}
	return SourceOther
}

// HTTPLatencyBuckets are tuned for sub-second request handling
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)
)

// Extraction Metrics
var (
	FieldExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_extractions_total",
			Help:      "Field extraction outcomes by field and status",
		},
		[]string{LabelField, LabelStatus},
	)

	ConfirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirmations_total",
			Help:      "Submitted messages by outcome and source",
		},
		[]string{LabelOutcome, LabelSource},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_cache_lookups_total",
			Help:      "Parse cache lookups by result",
		},
		[]string{LabelResult},
	)

	PaymentMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_matches_total",
			Help:      "Payment match attempts by kind",
		},
		[]string{LabelKind},
	)
)
