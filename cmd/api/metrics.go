package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	subscribersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "journal_feed_subscribers",
			Help: "Number of live Subscribe streams.",
		},
	)

	subscribersDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_feed_subscribers_dropped_total",
			Help: "Subscribers dropped because their queue was full.",
		},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_feed_events_total",
			Help: "Upsert events published to the feed hub.",
		},
		[]string{"kind"},
	)

	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "journal_rpc_duration_seconds",
			Help:    "Duration of gRPC calls by method and status code.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)

	uploadedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_media_uploaded_bytes_total",
			Help: "Bytes stored in the media bucket.",
		},
	)
)

func init() {
	prometheus.MustRegister(subscribersGauge)
	prometheus.MustRegister(subscribersDropped)
	prometheus.MustRegister(eventsPublished)
	prometheus.MustRegister(rpcDuration)
	prometheus.MustRegister(uploadedBytes)
}
