package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aevon-lab/event-replay/internal/core/ledger"
	"github.com/aevon-lab/event-replay/internal/core/linkage"
	"github.com/aevon-lab/event-replay/internal/core/replay"
	"github.com/aevon-lab/event-replay/internal/projection"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Missing is printed for absent values, matching how a left join renders them.
const Missing = "NaN"

const (
	DefaultTimeLayout = "2006-01-02 15:04:05"
	idColumn          = "id"
	ruleWidth         = 80
)

// Options configures rendering.
type Options struct {
	Language   language.Tag
	Location   *time.Location
	TimeLayout string
}

// Writer renders replay results as plain-text tables.
type Writer struct {
	out     io.Writer
	printer *message.Printer
	loc     *time.Location
	layout  string
}

// NewWriter creates a report writer. Zero options fall back to English, the
// local zone and DefaultTimeLayout.
func NewWriter(out io.Writer, opts Options) *Writer {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.TimeLayout == "" {
		opts.TimeLayout = DefaultTimeLayout
	}
	if opts.Language == language.Und {
		opts.Language = language.English
	}
	return &Writer{
		out:     out,
		printer: message.NewPrinter(opts.Language),
		loc:     opts.Location,
		layout:  opts.TimeLayout,
	}
}

// All renders every table, the joined view when present, the ledger and the summary.
func (w *Writer) All(result *projection.Result) error {
	w.banner("HISTORICAL TABLE VIEWS")
	for _, t := range result.Tables {
		if err := w.Historical(t.Name, t.State); err != nil {
			return err
		}
	}

	if result.Denormalized != nil {
		w.banner("DENORMALIZED JOINED TABLE")
		if err := w.Denormalized(result.Denormalized); err != nil {
			return err
		}
	}

	w.banner("TRANSACTION LEDGER")
	if err := w.Ledger(result.Transactions); err != nil {
		return err
	}

	w.banner("SUMMARY")
	return w.Summary(result)
}

// Historical renders the final state of one table: id, bookkeeping
// timestamps, then every field seen on any record. A field sharing a name
// with a leading column is shown as <table>.<field>.
func (w *Writer) Historical(table string, state *replay.TableState) error {
	fmt.Fprintf(w.out, "\n%s TABLE:\n", strings.ToUpper(displayName(table)))
	if state.Len() == 0 {
		fmt.Fprintf(w.out, "No %s found.\n", displayName(table))
		return nil
	}

	fields := state.Columns()
	header := []string{idColumn, replay.CreatedAtColumn, replay.LastUpdatedColumn}
	taken := map[string]bool{idColumn: true, replay.CreatedAtColumn: true, replay.LastUpdatedColumn: true}
	for _, f := range fields {
		name := f
		if taken[name] {
			name = table + "." + f
		}
		taken[name] = true
		header = append(header, name)
	}

	tw := w.table()
	writeRow(tw, header)
	for _, rec := range state.Records() {
		row := []string{rec.ID, w.formatTime(rec.CreatedAt), w.formatTime(rec.LastUpdated)}
		for _, f := range fields {
			v, ok := rec.Get(f)
			if !ok {
				row = append(row, Missing)
				continue
			}
			row = append(row, formatValue(v))
		}
		writeRow(tw, row)
	}
	return tw.Flush()
}

// Denormalized renders a joined view.
func (w *Writer) Denormalized(view *linkage.View) error {
	if view.Len() == 0 {
		fmt.Fprintln(w.out, "No joined records found.")
		return nil
	}

	tw := w.table()
	writeRow(tw, view.Columns)
	for _, r := range view.Rows {
		row := make([]string, 0, len(view.Columns))
		for _, c := range view.Columns {
			row = append(row, w.formatCell(c, r.Get(c)))
		}
		writeRow(tw, row)
	}
	return tw.Flush()
}

// Ledger renders transactions in the order given.
func (w *Writer) Ledger(txs []ledger.Transaction) error {
	w.printer.Fprintf(w.out, "Total number of transactions detected: %d\n", len(txs))
	if len(txs) == 0 {
		fmt.Fprintln(w.out, "No transactions found in the event logs.")
		return nil
	}

	tw := w.table()
	writeRow(tw, []string{"#", "time", "type", "entity", "reference", "value", "description"})
	for i, tx := range txs {
		writeRow(tw, []string{
			w.printer.Sprintf("%d", i+1),
			w.formatInstant(tx.Time()),
			tx.Type,
			tx.EntityID,
			tx.Reference,
			formatValue(tx.Value),
			tx.Description,
		})
	}
	return tw.Flush()
}

// Summary renders per-table counts and ledger totals.
func (w *Writer) Summary(result *projection.Result) error {
	tw := w.table()
	writeRow(tw, []string{"table", "events", "entities", "applied", "skipped", "dropped"})
	for _, t := range result.Tables {
		writeRow(tw, []string{
			t.Name,
			w.printer.Sprintf("%d", t.Stats.Events),
			w.printer.Sprintf("%d", t.State.Len()),
			w.printer.Sprintf("%d", t.Stats.Applied),
			w.printer.Sprintf("%d", t.Stats.Skipped),
			w.printer.Sprintf("%d", t.Stats.Dropped),
		})
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if result.Denormalized != nil {
		w.printer.Fprintf(w.out, "Joined records: %d\n", result.Denormalized.Len())
	}

	s := ledger.Summarize(result.Transactions)
	w.printer.Fprintf(w.out, "Transactions: %d across %d entities\n", s.Count, s.Entities)
	for _, typ := range sortedKeys(s.ByType) {
		figs := s.Figures[typ]
		w.printer.Fprintf(w.out, "  %s: %d (min %s, max %s, last %s)\n", typ, s.ByType[typ],
			figs[ledger.OpMin], figs[ledger.OpMax], figs[ledger.OpLast])
	}
	if s.Count > 0 {
		fmt.Fprintf(w.out, "First: %s\nLast:  %s\n", w.formatTime(s.First), w.formatTime(s.Last))
	}
	return nil
}

func (w *Writer) banner(title string) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(w.out, "\n%s\n%s\n%s\n", rule, title, rule)
}

func (w *Writer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
}

func (w *Writer) formatTime(ms int64) string {
	return w.formatInstant(time.UnixMilli(ms))
}

func (w *Writer) formatInstant(t time.Time) string {
	return t.In(w.loc).Format(w.layout)
}

// formatCell renders bookkeeping timestamps as times and everything else as-is.
func (w *Writer) formatCell(column string, v interface{}) string {
	if column == replay.CreatedAtColumn || column == replay.LastUpdatedColumn {
		if ms, ok := v.(int64); ok {
			return w.formatTime(ms)
		}
	}
	return formatValue(v)
}
