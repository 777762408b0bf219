package journal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tabel-bot/internal/application/journal"
	"github.com/jhoicas/tabel-bot/internal/application/ports"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/infrastructure/memory"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

type fakeExporter struct {
	format string
	meta   ports.ExportMeta
	rows   int
}

func (f *fakeExporter) Export(_ context.Context, format string, meta ports.ExportMeta, events []*entity.Event) (*ports.Document, error) {
	f.format, f.meta, f.rows = format, meta, len(events)
	return &ports.Document{Name: "journal." + format, Data: []byte("x")}, nil
}

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T, maxRows int) (*journal.Service, *memory.Store, *fakeExporter) {
	t.Helper()
	store := memory.New()
	exp := &fakeExporter{}
	svc := journal.NewService(store, store.Repositories().Events, exp, maxRows, clock.NewFake(now), logger.Nop())
	ctx := context.Background()
	repos := store.Repositories()
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: 1, Name: "Иванов И.И."}))
	require.NoError(t, repos.Events.Append(ctx, entity.NewEvent(1, "away", "Штаб", now.AddDate(0, 0, -20))))
	require.NoError(t, repos.Events.Append(ctx, entity.NewEvent(1, "in_unit", "", now.AddDate(0, 0, -3))))
	require.NoError(t, repos.Events.Append(ctx, entity.NewEvent(1, "away", "ВВК", now.Add(-time.Hour))))
	return svc, store, exp
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]entity.Period{
		"today": entity.PeriodToday, "week": entity.PeriodWeek, "month": entity.PeriodMonth, "all": entity.PeriodAll,
	} {
		got, err := journal.ParsePeriod(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := journal.ParsePeriod("year")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestList_Periods(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t, 0)

	today, err := svc.List(ctx, entity.EventFilter{Period: entity.PeriodToday}, 0)
	require.NoError(t, err)
	assert.Len(t, today, 1)

	week, err := svc.List(ctx, entity.EventFilter{Period: entity.PeriodWeek}, 0)
	require.NoError(t, err)
	assert.Len(t, week, 2)

	month, err := svc.List(ctx, entity.EventFilter{Period: entity.PeriodMonth}, 0)
	require.NoError(t, err)
	assert.Len(t, month, 3)
}

func TestClear_IsLogOnly(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setup(t, 0)

	n, err := svc.Clear(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	total, _ := store.Repositories().Events.Count(ctx)
	assert.Equal(t, 4, total, "очистка добавляет событие и ничего не удаляет")

	recent, err := svc.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.ActionJournalCleared, recent[0].Action)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	svc, _, exp := setup(t, 2)

	doc, err := svc.Export(ctx, "Командир", ports.FormatXLSX, entity.PeriodAll)
	require.NoError(t, err)
	assert.Equal(t, "journal.xlsx", doc.Name)
	assert.Equal(t, 2, exp.rows, "выгрузка ограничена maxRows")
	assert.Equal(t, "за всё время", exp.meta.PeriodLabel)

	_, err = svc.Export(ctx, "Командир", "docx", entity.PeriodAll)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStats(t *testing.T) {
	svc, _, _ := setup(t, 0)
	stats, err := svc.Stats(context.Background(), entity.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, "away", stats.ByAction[0].Action)
}
