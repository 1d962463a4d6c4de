package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tictactoe"

// Metrics are the game counters, registered on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	moves         prometheus.Counter
	rejectedMoves *prometheus.CounterVec
	roundsDone    *prometheus.CounterVec
	matches       prometheus.Counter
}

func New() *Metrics {
	that := &Metrics{
		registry: prometheus.NewRegistry(),

		moves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Number of accepted moves.",
		}),
		rejectedMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_rejected_total",
			Help:      "Number of rejected moves by reason.",
		}, []string{"reason"}),
		roundsDone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_finished_total",
			Help:      "Number of finished rounds by outcome.",
		}, []string{"outcome"}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "Number of created matches.",
		}),
	}

	that.registry.MustRegister(that.moves, that.rejectedMoves, that.roundsDone, that.matches)

	return that
}

func (that *Metrics) MoveAccepted() {
	that.moves.Inc()
}

func (that *Metrics) MoveRejected(reason string) {
	that.rejectedMoves.WithLabelValues(reason).Inc()
}

// RoundFinished counts a round by outcome: "X", "O" or "draw".
func (that *Metrics) RoundFinished(outcome string) {
	that.roundsDone.WithLabelValues(outcome).Inc()
}

func (that *Metrics) MatchCreated() {
	that.matches.Inc()
}

func (that *Metrics) Registry() *prometheus.Registry {
	return that.registry
}

func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{Registry: that.registry})
}
