package metrics

import (
	"testing"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.BusinessError(domain.ErrCoinNotEnough)
	m.BusinessError(domain.ErrCoinNotEnough)
	m.AchievementUnlocked(domain.AchievementRich)
	m.Notification(ResultDelivered)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.businessErrors.WithLabelValues("129", "COIN_NOT_ENOUGH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.achievementsUnlocked.WithLabelValues(domain.AchievementRich)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues(ResultDelivered)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.BusinessError(domain.ErrUserNotFound)
		m.AchievementUnlocked("x")
		m.Notification(ResultFailed)
	})
}
