package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tabel-bot/internal/application/report"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/infrastructure/memory"
	"github.com/jhoicas/tabel-bot/pkg/clock"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	repos := store.Repositories()
	users := []*entity.User{
		{ID: 1, Name: "Командиров К.К.", Status: entity.StatusInUnit, IsAdmin: true},
		{ID: 2, Name: "Иванов И.И.", Status: entity.StatusAway, Location: "Штаб"},
		{ID: 3, Name: "Петров П.П.", Status: entity.StatusAway, Location: "Штаб"},
		{ID: 4, Name: "Сидоров С.С.", Status: entity.StatusInUnit},
	}
	for _, u := range users {
		require.NoError(t, repos.Users.Create(ctx, u))
	}
	require.NoError(t, repos.Events.Append(ctx, entity.NewEvent(2, "away", "Штаб", now.Add(-time.Hour))))
	require.NoError(t, repos.Events.Append(ctx, entity.NewEvent(1, entity.ActionAdminAdded, "", now.Add(-30*time.Minute))))
	require.NoError(t, repos.Events.Append(ctx, entity.NewEvent(3, "away", "Штаб", now.AddDate(0, 0, -2))))
	return store
}

func TestSummaryAndFormat(t *testing.T) {
	store := seed(t)
	svc := report.NewService(store.Repositories(), clock.NewFake(now))

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total, "командиры не учитываются")
	assert.Equal(t, 1, sum.InUnit)
	assert.Equal(t, 2, sum.Away)
	assert.Equal(t, "33.3", sum.PresenceRate.StringFixed(1))

	text := report.FormatSummary(sum, now)
	assert.Contains(t, text, "Вне части: 2")
	assert.Contains(t, text, "Присутствие: 33.3%")
	assert.Contains(t, text, "Штаб (2): Иванов И.И., Петров П.П.")
}

func TestSystemStats(t *testing.T) {
	store := seed(t)
	svc := report.NewService(store.Repositories(), clock.NewFake(now))

	st, err := svc.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, st.Users)
	assert.Equal(t, 1, st.Admins)
	assert.Equal(t, 3, st.Events)
	assert.Equal(t, 2, st.EventsToday)
	assert.Equal(t, 4, st.Notifications.TotalUsers)
}

func TestStatusHistory(t *testing.T) {
	store := seed(t)
	svc := report.NewService(store.Repositories(), clock.NewFake(now))

	history, err := svc.StatusHistory(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Иванов И.И.", history[0].UserName)
}
