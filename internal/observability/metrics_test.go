package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] != pair.GetValue() {
					continue metrics
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestEvaluationCounters(t *testing.T) {
	labels := map[string]string{"action": "self_eval.saved"}
	before := counterValue(t, "hweval_evaluation_mutations_total", labels)
	EvaluationMutations().WithLabelValues("self_eval.saved").Inc()
	require.Equal(t, before+1, counterValue(t, "hweval_evaluation_mutations_total", labels))

	autoBefore := counterValue(t, "hweval_autogrades_total", nil)
	AutoGrades().Inc()
	require.Equal(t, autoBefore+1, counterValue(t, "hweval_autogrades_total", nil))
}
