package permissions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tabel-bot/internal/application/permissions"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/infrastructure/memory"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

func newService() (*permissions.Service, *memory.Store) {
	store := memory.New()
	clk := clock.NewFake(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	return permissions.NewService(store, store.Repositories().Permissions, clk, logger.Nop()), store
}

func TestEnsurePermissions_LazyDefaults(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	p, err := svc.EnsurePermissions(ctx, 10)
	require.NoError(t, err)
	assert.True(t, p.Has(entity.PermViewPersonnel))
	assert.True(t, p.Has(entity.PermViewJournal))
	assert.True(t, p.Has(entity.PermViewStats))
	assert.False(t, p.Has(entity.PermManagePersonnel))
	assert.False(t, p.Has(entity.PermForceOperations))
	assert.Equal(t, 3, p.Count())

	stored, err := store.Repositories().Permissions.Get(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, stored, "запись создаётся при первом чтении")
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	assert.True(t, svc.Check(ctx, 1, entity.PermViewJournal), "без записи действуют значения по умолчанию")
	assert.False(t, svc.Check(ctx, 1, entity.PermExportData))
	assert.False(t, svc.Check(ctx, 1, "can_fly"))

	stored, err := store.Repositories().Permissions.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, stored, "проверка права ничего не пишет")
}

func TestUpdate_IgnoresUnknownAndLogs(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	p, err := svc.Update(ctx, 1, 10, map[string]bool{
		entity.PermExportData: true,
		"can_fly":             true,
	})
	require.NoError(t, err)
	assert.True(t, p.Has(entity.PermExportData))
	assert.False(t, p.Has("can_fly"))
	_, known := p.Flags["can_fly"]
	assert.False(t, known)

	events, err := store.Repositories().Events.List(ctx, entity.EventFilter{}, 0, time.Now())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.ActionPermissionsUpdated, events[0].Action)
	assert.Contains(t, events[0].Details, "Экспорт ✓")
}

func TestUpdate_OnlyUnknownWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	_, err := svc.Update(ctx, 1, 10, map[string]bool{"can_fly": true})
	require.NoError(t, err)
	n, _ := store.Repositories().Events.Count(ctx)
	assert.Zero(t, n)
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	p, err := svc.Toggle(ctx, 1, 10, entity.PermViewStats)
	require.NoError(t, err)
	assert.False(t, p.Has(entity.PermViewStats))

	p, err = svc.Toggle(ctx, 1, 10, entity.PermViewStats)
	require.NoError(t, err)
	assert.True(t, p.Has(entity.PermViewStats))

	_, err = svc.Toggle(ctx, 1, 10, "bogus")
	assert.Error(t, err)
}
