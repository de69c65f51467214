package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesSent counts frames delivered to the connected viewer.
	FramesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camlink_frames_sent_total",
		Help: "Frames transmitted to the connected client",
	})

	// FramesDropped counts frames produced while no client was connected.
	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camlink_frames_dropped_total",
		Help: "Frames dropped because no client was connected",
	})

	// BytesSent counts payload and header bytes written to the client.
	BytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camlink_bytes_sent_total",
		Help: "Bytes transmitted to the connected client",
	})

	// HeartbeatsIssued counts heartbeat-carrier frames sent.
	HeartbeatsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camlink_heartbeats_issued_total",
		Help: "Heartbeat tokens issued to the client",
	})

	// HeartbeatsAcked counts acknowledged heartbeat tokens.
	HeartbeatsAcked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camlink_heartbeats_acked_total",
		Help: "Heartbeat tokens acknowledged by the client",
	})

	// Evictions counts client evictions by reason.
	Evictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camlink_evictions_total",
		Help: "Client evictions by reason",
	}, []string{"reason"})

	// BadPackets counts discarded inbound packets (short or wrong magic).
	BadPackets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camlink_bad_packets_total",
		Help: "Inbound packets discarded as noise",
	})

	// ClientConnected reports whether a viewer is currently attached.
	ClientConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "camlink_client_connected",
		Help: "1 while a client connection is active",
	})

	// FrameSize observes transmitted frame payload sizes.
	FrameSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "camlink_frame_size_bytes",
		Help:    "Payload size of transmitted frames",
		Buckets: prometheus.ExponentialBuckets(256, 4, 10),
	})
)

// ObserveFrameSent records one delivered frame of n payload bytes.
func ObserveFrameSent(n int) {
	FramesSent.Inc()
	BytesSent.Add(float64(n))
	FrameSize.Observe(float64(n))
}

// IncEviction records an eviction with the given reason.
func IncEviction(reason string) {
	Evictions.WithLabelValues(reason).Inc()
}
