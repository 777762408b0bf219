package bot_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tabel-bot/internal/application/attendance"
	"github.com/jhoicas/tabel-bot/internal/application/conversation"
	"github.com/jhoicas/tabel-bot/internal/application/journal"
	"github.com/jhoicas/tabel-bot/internal/application/notification"
	"github.com/jhoicas/tabel-bot/internal/application/permissions"
	"github.com/jhoicas/tabel-bot/internal/application/personnel"
	"github.com/jhoicas/tabel-bot/internal/application/ports"
	"github.com/jhoicas/tabel-bot/internal/application/report"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/infrastructure/memory"
	"github.com/jhoicas/tabel-bot/internal/interfaces/bot"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

const rootID = 1

var now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type stubExporter struct{}

func (stubExporter) Export(_ context.Context, format string, _ ports.ExportMeta, events []*entity.Event) (*ports.Document, error) {
	return &ports.Document{Name: "journal." + format, Data: []byte(fmt.Sprint(len(events)))}, nil
}

type fixture struct {
	router  *bot.Router
	store   *memory.Store
	tracker *conversation.Tracker
	deps    bot.Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	repos := store.Repositories()
	clk := clock.NewFake(now)
	log := logger.Nop()
	notifier := ports.NopNotifier{}
	dir := personnel.NewDirectory(repos.Users, []int64{rootID})

	deps := bot.Deps{
		Engine:      attendance.NewEngine(store, repos.Users, notifier, clk, log),
		Personnel:   personnel.NewService(store, repos.Users, notifier, dir, clk, log),
		Permissions: permissions.NewService(store, repos.Permissions, clk, log),
		Journal:     journal.NewService(store, repos.Events, stubExporter{}, 0, clk, log),
		Reports:     report.NewService(repos, clk),
		Settings:    notification.NewSettings(store, repos.Notifications, clk, log),
		Tracker:     conversation.NewTracker(time.Hour, clk),
		Clock:       clk,
		Log:         log,
	}
	return &fixture{router: bot.NewRouter(deps), store: store, tracker: deps.Tracker, deps: deps}
}

func (f *fixture) addUser(t *testing.T, id int64, name string, status entity.Status, location string) {
	t.Helper()
	require.NoError(t, f.store.Repositories().Users.Create(context.Background(), &entity.User{
		ID: id, Name: name, Status: status, Location: location, LastStatusChange: now,
	}))
}

func (f *fixture) user(t *testing.T, id int64) *entity.User {
	t.Helper()
	u, err := f.store.Repositories().Users.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func (f *fixture) eventCount(t *testing.T) int {
	t.Helper()
	n, err := f.store.Repositories().Events.Count(context.Background())
	require.NoError(t, err)
	return n
}

func actor(id int64) bot.Actor { return bot.Actor{ID: id, Username: "user"} }

func TestArrivalTwice_OneEventAndNotice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, 42, "Иванов И.И.", entity.StatusAway, "Штаб")

	resp := f.router.Dispatch(ctx, actor(42), "user:arrived")
	assert.Contains(t, resp.Text, "Прибытие отмечено")
	assert.Equal(t, 1, f.eventCount(t))

	resp = f.router.Dispatch(ctx, actor(42), "user:arrived")
	assert.Empty(t, resp.Text)
	assert.NotEmpty(t, resp.Notice)
	assert.Equal(t, 1, f.eventCount(t))

	u := f.user(t, 42)
	assert.Equal(t, entity.StatusInUnit, u.Status)
	assert.Empty(t, u.Location)
}

func TestDeparture_PresetLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, 42, "Иванов И.И.", entity.StatusInUnit, "")

	f.router.Dispatch(ctx, actor(42), "user:departed")
	assert.Equal(t, conversation.AwaitingLocationChoice, f.tracker.Get(42).Tag)

	resp := f.router.Dispatch(ctx, actor(42), "user:location:vvk")
	assert.Contains(t, resp.Text, "ВВК")
	assert.True(t, f.tracker.Get(42).IsIdle())

	u := f.user(t, 42)
	assert.Equal(t, entity.StatusAway, u.Status)
	assert.Equal(t, "ВВК", u.Location)

	resp = f.router.Dispatch(ctx, actor(42), "user:departed")
	assert.NotEmpty(t, resp.Notice)
	assert.True(t, f.tracker.Get(42).IsIdle())
}

func TestRegistrationScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := actor(42)

	resp := f.router.HandleCommand(ctx, a, "start", "")
	assert.Equal(t, conversation.MsgAskName, resp.Text)
	assert.Equal(t, conversation.AwaitingName, f.tracker.Get(42).Tag)

	resp = f.router.HandleText(ctx, a, "иванов")
	assert.Equal(t, conversation.AwaitingName, f.tracker.Get(42).Tag, "invalid name keeps the state")

	f.router.HandleText(ctx, a, "Иванов И.И.")
	assert.Equal(t, conversation.AwaitingInitialStatus, f.tracker.Get(42).Tag)

	f.router.Dispatch(ctx, a, "user:initial_status:away")
	assert.Equal(t, conversation.AwaitingLocationChoice, f.tracker.Get(42).Tag)

	f.router.Dispatch(ctx, a, "user:location:custom")
	assert.Equal(t, conversation.AwaitingCustomLocation, f.tracker.Get(42).Tag)

	resp = f.router.HandleText(ctx, a, " Штаб123")
	assert.Equal(t, conversation.AwaitingCustomLocation, f.tracker.Get(42).Tag)
	assert.Equal(t, 0, f.eventCount(t))

	resp = f.router.HandleText(ctx, a, "Склад")
	assert.Contains(t, resp.Text, "Регистрация завершена")
	assert.True(t, f.tracker.Get(42).IsIdle())

	u := f.user(t, 42)
	assert.Equal(t, "Иванов И.И.", u.Name)
	assert.Equal(t, entity.StatusAway, u.Status)
	assert.Equal(t, "Склад", u.Location)
	assert.Equal(t, 2, f.eventCount(t))
}

func TestPagination_OutOfRangeFallsBackToFirstPage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 20; i++ {
		f.addUser(t, int64(100+i), fmt.Sprintf("Боец%02d А.А.", i), entity.StatusInUnit, "")
	}

	for _, sub := range []string{"list_users_99", "list_users_0", "list_users_abc", "list_users"} {
		resp := f.router.Dispatch(ctx, actor(rootID), "admin:personnel:"+sub)
		assert.Contains(t, resp.Text, "стр. 1/3", sub)
	}
	resp := f.router.Dispatch(ctx, actor(rootID), "admin:personnel:list_users_3")
	assert.Contains(t, resp.Text, "стр. 3/3")
}

func TestNonAdmin_Denied(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, 42, "Иванов И.И.", entity.StatusAway, "Штаб")
	before := f.eventCount(t)

	for _, raw := range []string{
		"admin:panel",
		"admin:dashboard",
		"admin:danger_zone:mark_all_arrived",
		"admin:person_delete_ok:42",
		"admin:export_csv:all",
		"admin:nope:x",
		"admin:journal:nope",
		"admin:panel:zzz",
	} {
		resp := f.router.Dispatch(ctx, actor(42), raw)
		assert.Equal(t, bot.MsgDenied, resp.Text, raw)
		assert.Nil(t, resp.Document)
	}
	assert.Equal(t, before, f.eventCount(t))
	assert.True(t, f.tracker.Get(42).IsIdle())
}

func TestCommander_PermissionFlags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, 7, "Петров П.П.", entity.StatusInUnit, "")
	require.NoError(t, f.store.Repositories().Users.SetAdmin(ctx, 7, true, now))

	resp := f.router.Dispatch(ctx, actor(7), "admin:dashboard")
	assert.Contains(t, resp.Text, "Сводка")

	resp = f.router.Dispatch(ctx, actor(7), "admin:export_csv:all")
	assert.Equal(t, bot.MsgDenied, resp.Text)

	resp = f.router.Dispatch(ctx, actor(7), "admin:settings:admins")
	assert.Equal(t, bot.MsgDenied, resp.Text, "root only")

	_, err := f.deps.Permissions.Toggle(ctx, rootID, 7, entity.PermExportData)
	require.NoError(t, err)
	resp = f.router.Dispatch(ctx, actor(7), "admin:export_csv:all")
	require.NotNil(t, resp.Document)
	assert.Equal(t, "journal.csv", resp.Document.Name)
}

func startMarkAll(t *testing.T, f *fixture) {
	t.Helper()
	f.router.Dispatch(context.Background(), actor(rootID), "admin:danger_zone:mark_all_arrived")
	require.Equal(t, conversation.AwaitingDangerText, f.tracker.Get(rootID).Tag)
}

func markAllEvents(t *testing.T, f *fixture) int {
	t.Helper()
	events, err := f.store.Repositories().Events.List(context.Background(),
		entity.EventFilter{ActionLike: entity.ActionMarkAllArrived}, 0, now)
	require.NoError(t, err)
	return len(events)
}

func TestDangerFlow(t *testing.T) {
	ctx := context.Background()
	root := actor(rootID)

	t.Run("wrong text cancels", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, 42, "Иванов И.И.", entity.StatusAway, "Штаб")
		startMarkAll(t, f)

		resp := f.router.HandleText(ctx, root, "нет")
		assert.Equal(t, conversation.MsgDangerCancelled, resp.Text)
		assert.True(t, f.tracker.Get(rootID).IsIdle())
		assert.Equal(t, entity.StatusAway, f.user(t, 42).Status)
	})

	t.Run("token then cancel", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, 42, "Иванов И.И.", entity.StatusAway, "Штаб")
		startMarkAll(t, f)

		f.router.HandleText(ctx, root, "Да")
		assert.Equal(t, conversation.AwaitingDangerButton, f.tracker.Get(rootID).Tag)

		f.router.Dispatch(ctx, root, "admin:cancel_danger:mark_all_arrived")
		assert.True(t, f.tracker.Get(rootID).IsIdle())
		assert.Equal(t, entity.StatusAway, f.user(t, 42).Status)
		assert.Zero(t, markAllEvents(t, f))
	})

	t.Run("token then confirm executes once", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, 42, "Иванов И.И.", entity.StatusAway, "Штаб")
		startMarkAll(t, f)

		f.router.HandleText(ctx, root, "да")
		resp := f.router.Dispatch(ctx, root, "admin:confirm_text:yes")
		assert.Contains(t, resp.Text, "Отмечены прибывшими: 1")
		assert.Equal(t, entity.StatusInUnit, f.user(t, 42).Status)
		assert.Equal(t, 1, markAllEvents(t, f))

		resp = f.router.Dispatch(ctx, root, "admin:confirm_text:yes")
		assert.Equal(t, conversation.MsgMismatch, resp.Text)
		assert.Equal(t, 1, markAllEvents(t, f))
	})
}

func TestRenameFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, 42, "Иванов И.И.", entity.StatusInUnit, "")

	f.router.Dispatch(ctx, actor(rootID), "admin:person_rename:42")
	assert.Equal(t, conversation.AwaitingRenameInput, f.tracker.Get(rootID).Tag)

	resp := f.router.HandleText(ctx, actor(rootID), "Петров П.П.")
	assert.Contains(t, resp.Text, "Петров П.П.")
	assert.Equal(t, "Петров П.П.", f.user(t, 42).Name)
}

func TestDeleteRootAdmin_Refused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, rootID, "Командиров К.К.", entity.StatusInUnit, "")

	resp := f.router.Dispatch(ctx, actor(rootID), "admin:person_delete_ok:1")
	assert.Contains(t, resp.Text, "Главного администратора")
	f.user(t, rootID)
}

func TestUnknownAndMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, 42, "Иванов И.И.", entity.StatusInUnit, "")

	for _, raw := range []string{"", "garbage", "user:nope", "user:arrived:extra:parts", "юзер:arrived"} {
		resp := f.router.Dispatch(ctx, actor(42), raw)
		assert.Equal(t, bot.MsgUnknownAction, resp.Text, raw)
	}

	resp := f.router.Dispatch(ctx, actor(42), "user:location:shop")
	assert.Equal(t, conversation.MsgMismatch, resp.Text)
	assert.Equal(t, entity.StatusInUnit, f.user(t, 42).Status)

	resp = f.router.Dispatch(ctx, actor(rootID), "admin:nope:x")
	assert.Equal(t, bot.MsgUnknownAction, resp.Text, "admin sees unknown routes as unknown")
}

func TestRegistration_TextAtButtonStepKeepsFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := actor(42)

	f.router.HandleCommand(ctx, a, "start", "")
	f.router.HandleText(ctx, a, "Иванов И.И.")
	require.Equal(t, conversation.AwaitingInitialStatus, f.tracker.Get(42).Tag)

	resp := f.router.HandleText(ctx, a, "в части")
	assert.Contains(t, resp.Text, conversation.MsgUseButtons)
	require.NotNil(t, resp.Keyboard)
	assert.Equal(t, conversation.AwaitingInitialStatus, f.tracker.Get(42).Tag)

	f.router.Dispatch(ctx, a, "user:initial_status:in_unit")
	assert.True(t, f.tracker.Get(42).IsIdle())
	u := f.user(t, 42)
	assert.Equal(t, "Иванов И.И.", u.Name)
	assert.Equal(t, entity.StatusInUnit, u.Status)
}

func TestIdleText_ShowsHint(t *testing.T) {
	f := newFixture(t)
	resp := f.router.HandleText(context.Background(), actor(42), "привет")
	assert.Equal(t, bot.MsgUseMenu, resp.Text)
	require.NotNil(t, resp.Keyboard)
}

func TestPanic_IsRecovered(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	deps := f.deps
	deps.Reports = nil
	r := bot.NewRouter(deps)

	resp := r.Dispatch(ctx, actor(rootID), "admin:dashboard")
	assert.Contains(t, resp.Text, bot.MsgFailure)
	require.NotNil(t, resp.Keyboard)

	resp = r.Dispatch(ctx, actor(rootID), "admin:panel")
	assert.Contains(t, resp.Text, "Админ-панель")
}

func TestSetNameCommand(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, 42, "Иванов И.И.", entity.StatusInUnit, "")

	resp := f.router.HandleCommand(ctx, actor(42), "setname", "Сидоров С.С.")
	assert.Contains(t, resp.Text, "Сидоров С.С.")
	assert.Equal(t, "Сидоров С.С.", f.user(t, 42).Name)

	resp = f.router.HandleCommand(ctx, actor(42), "setname", "sidorov")
	assert.Equal(t, "Сидоров С.С.", f.user(t, 42).Name)
	assert.NotContains(t, resp.Text, bot.MsgFailure)
}
