package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementLogin("success")
	m.IncrementRoleChange("ADMIN")
	m.IncrementRoleChange("")
	m.ObserveRequest("/nav/main", "200", time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoleChanges.WithLabelValues("ADMIN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoleChanges.WithLabelValues("none")), "absent role is labelled none")
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}
