package service

import "github.com/prometheus/client_golang/prometheus"

var authOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "auth_outcomes_total", Help: "Registration and login outcomes"},
	[]string{"op", "outcome"},
)

func init() { prometheus.MustRegister(authOutcomes) }

// outcome 把错误归类为指标标签
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if k, ok := kindOf(err); ok {
		return k.String()
	}
	return "error"
}
