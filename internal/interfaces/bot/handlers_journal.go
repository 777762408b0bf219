package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/tabel-bot/internal/application/conversation"
	"github.com/jhoicas/tabel-bot/internal/application/journal"
	"github.com/jhoicas/tabel-bot/internal/application/ports"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

// periodLimit событий в ответе на фильтр по периоду.
const periodLimit = 30

func (r *Router) registerJournalRoutes() {
	r.handle(NSAdmin, "journal", "", entity.PermViewJournal, r.showJournal)
	r.handle(NSAdmin, "journal", "recent", entity.PermViewJournal, r.journalRecent)
	r.handle(NSAdmin, "journal", "filters", entity.PermViewJournal, r.journalFilters)
	r.handle(NSAdmin, "journal", "stats", entity.PermViewJournal, r.journalStats)
	r.handle(NSAdmin, "journal", "export", entity.PermExportData, r.journalExportMenu)
	r.handle(NSAdmin, "journal", "clear", entity.PermClearJournal, r.journalClear)

	for _, p := range []string{"today", "week", "month", "all"} {
		r.handle(NSAdmin, "journal_filter", p, entity.PermViewJournal, r.journalByPeriod)
	}
	r.handle(NSAdmin, "journal_filter", "stats", entity.PermViewJournal, r.journalPeriodStats)
	r.handle(NSAdmin, "journal_filter", conversation.FilterByName, entity.PermViewJournal, r.journalTextFilter)
	r.handle(NSAdmin, "journal_filter", conversation.FilterByAction, entity.PermViewJournal, r.journalTextFilter)

	for _, f := range []string{ports.FormatCSV, ports.FormatXLSX, ports.FormatPDF} {
		r.handle(NSAdmin, "export_"+f, anySub, entity.PermExportData, r.journalExport)
	}
}

func (r *Router) showJournal(_ context.Context, _ *Request) (*Result, error) {
	return reply("📖 Журнал событий", journalMenu())
}

func (r *Router) journalRecent(ctx context.Context, _ *Request) (*Result, error) {
	events, err := r.d.Journal.Recent(ctx)
	if err != nil {
		return nil, err
	}
	return reply(formatEvents("🕑 Последние события", events, r.loc()), journalBack())
}

func (r *Router) journalFilters(_ context.Context, _ *Request) (*Result, error) {
	return reply("🔎 Фильтры журнала", filtersMenu())
}

func (r *Router) journalStats(ctx context.Context, _ *Request) (*Result, error) {
	stats, err := r.d.Journal.Stats(ctx, entity.EventFilter{})
	if err != nil {
		return nil, err
	}
	return reply(formatEventStats("📈 Статистика журнала", stats), journalBack())
}

func (r *Router) journalExportMenu(_ context.Context, _ *Request) (*Result, error) {
	return reply("📤 Выберите формат и период выгрузки:", exportMenu())
}

func (r *Router) journalClear(_ context.Context, _ *Request) (*Result, error) {
	return startDanger(OpClearJournal)
}

func (r *Router) journalByPeriod(ctx context.Context, req *Request) (*Result, error) {
	period, err := journal.ParsePeriod(req.Cmd.Sub)
	if err != nil {
		return nil, err
	}
	events, err := r.d.Journal.List(ctx, entity.EventFilter{Period: period}, periodLimit)
	if err != nil {
		return nil, err
	}
	title := "📖 События " + journal.PeriodTitle(period)
	return reply(formatEvents(title, events, r.loc()), (&Keyboard{}).Row(backTo(cb(NSAdmin, "journal", "filters"))))
}

func (r *Router) journalPeriodStats(ctx context.Context, _ *Request) (*Result, error) {
	var b strings.Builder
	b.WriteString("📈 События по периодам\n\n")
	for _, p := range []entity.Period{entity.PeriodToday, entity.PeriodWeek, entity.PeriodMonth, entity.PeriodAll} {
		stats, err := r.d.Journal.Stats(ctx, entity.EventFilter{Period: p})
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "• %s: %d\n", journal.PeriodTitle(p), stats.Total)
	}
	return reply(b.String(), (&Keyboard{}).Row(backTo(cb(NSAdmin, "journal", "filters"))))
}

func (r *Router) journalTextFilter(_ context.Context, req *Request) (*Result, error) {
	return startFlow(conversation.Filter(req.Cmd.Sub), cancelKeyboard())
}

func (r *Router) journalExport(ctx context.Context, req *Request) (*Result, error) {
	format := strings.TrimPrefix(req.Cmd.Action, "export_")
	period, err := journal.ParsePeriod(req.Arg)
	if err != nil {
		return nil, err
	}
	doc, err := r.d.Journal.Export(ctx, r.actorName(ctx, req), format, period)
	if err != nil {
		return nil, err
	}
	return &Result{Response: Response{
		Text:     fmt.Sprintf("📤 Выгрузка журнала %s готова.", journal.PeriodTitle(period)),
		Keyboard: journalBack(),
		Document: doc,
	}}, nil
}

// startDanger начинает двойное подтверждение операции op.
func startDanger(op string) (*Result, error) {
	next := conversation.Danger(op)
	return &Result{
		Response: Response{
			Text:     fmt.Sprintf("☢️ %s\n\n%s", dangerTitles[op], conversation.Prompt(next)),
			Keyboard: keyboardFor(next),
		},
		Next: &next,
	}, nil
}
