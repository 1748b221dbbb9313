package csp

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeSolved          = "solved"
	OutcomeChecked         = "checked"
	OutcomeUnsatisfiable   = "unsatisfiable"
	OutcomeNoSolution      = "no_solution"
	OutcomeBudgetExhausted = "budget_exhausted"
)

// Metrics encapsulates the solver's Prometheus instrumentation
type Metrics struct {
	solves     *prometheus.CounterVec
	nodes      prometheus.Counter
	backtracks prometheus.Counter
	revisions  prometheus.Counter
	pruned     prometheus.Counter
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the solver collectors on the registerer
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_solves_total",
		Help: "Total number of solves by outcome",
	}, []string{"outcome"})

	nodes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_search_nodes_total",
		Help: "Total number of tentative assignments made by the search",
	})

	backtracks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_search_backtracks_total",
		Help: "Total number of retracted assignments",
	})

	revisions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_ac3_revisions_total",
		Help: "Total number of arcs revised by AC-3",
	})

	pruned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_ac3_pruned_values_total",
		Help: "Total number of domain values removed by AC-3",
	})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_solve_duration_seconds",
		Help:    "Duration of solves in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	registerer.MustRegister(solves, nodes, backtracks, revisions, pruned, duration)

	return &Metrics{
		solves:     solves,
		nodes:      nodes,
		backtracks: backtracks,
		revisions:  revisions,
		pruned:     pruned,
		duration:   duration,
	}
}

func (metrics *Metrics) observe(outcome string, stats Stats) {
	if metrics == nil {
		return
	}
	metrics.solves.WithLabelValues(outcome).Inc()
	metrics.nodes.Add(float64(stats.Nodes))
	metrics.backtracks.Add(float64(stats.Backtracks))
	metrics.revisions.Add(float64(stats.Revisions))
	metrics.pruned.Add(float64(stats.Pruned))
	metrics.duration.WithLabelValues(outcome).Observe(stats.Duration.Seconds())
}
