package view

import (
	"strconv"
	"strings"
	"time"

	"tasknotes-backend/internal/domain"
)

const dateLayout = "Jan 02, 2006, 03:04 PM"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes & < > " and ' for use in element text and quoted
// attribute values.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// FormatDate renders a millisecond timestamp in loc, or an em dash when the
// task carries no date.
func FormatDate(ms int64, loc *time.Location) string {
	if ms == 0 {
		return "—"
	}
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(dateLayout)
}

// RenderCards renders one card per task, in the given order.
func RenderCards(tasks []domain.Task, loc *time.Location) string {
	var b strings.Builder
	for _, t := range tasks {
		id := EscapeHTML(t.ID)
		b.WriteString(`<article class="card" data-id="` + id + `">` + "\n")
		b.WriteString(`  <div class="card__top">` + "\n")
		b.WriteString(`    <div>` + "\n")
		b.WriteString(`      <h3 class="card__title">` + EscapeHTML(t.Title) + `</h3>` + "\n")
		b.WriteString(`      <div class="card__meta">Created ` + FormatDate(t.Date, loc) + `</div>` + "\n")
		b.WriteString(`    </div>` + "\n")
		b.WriteString(`    <div class="badge" title="Task ID">` + id + `</div>` + "\n")
		b.WriteString(`  </div>` + "\n")
		b.WriteString(`  <p class="card__content">` + EscapeHTML(t.Content) + `</p>` + "\n")
		b.WriteString(`  <div class="card__actions">` + "\n")
		b.WriteString(`    <button class="btn btn--danger" data-action="delete" type="button">Delete</button>` + "\n")
		b.WriteString(`  </div>` + "\n")
		b.WriteString(`</article>` + "\n")
	}
	return b.String()
}

// Page is everything RenderPage needs. Tasks must already be the computed
// view, not the raw cache.
type Page struct {
	Tasks    []domain.Task
	Query    string
	Sort     SortMode
	Status   Status
	Location *time.Location
}

func RenderPage(p Page) string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n<title>Tasks</title>\n</head>\n<body>\n")

	b.WriteString(`<form id="filters" method="get" action="/">` + "\n")
	b.WriteString(`  <input id="search" name="q" type="search" placeholder="Search" value="` + EscapeHTML(p.Query) + `">` + "\n")
	b.WriteString(`  <select id="sort" name="sort">` + "\n")
	for _, m := range append([]SortMode{SortNone}, SortModes...) {
		selected := ""
		if m == p.Sort {
			selected = " selected"
		}
		b.WriteString(`    <option value="` + string(m) + `"` + selected + `>` + m.Label() + `</option>` + "\n")
	}
	b.WriteString("  </select>\n  <button type=\"submit\">Apply</button>\n</form>\n")

	b.WriteString(`<p id="statusMsg" class="status status--` + string(statusKindOrInfo(p.Status.Kind)) + `">` + EscapeHTML(p.Status.Text()) + `</p>` + "\n")
	b.WriteString(`<p>Tasks: <span id="count">` + strconv.Itoa(len(p.Tasks)) + `</span></p>` + "\n")

	hidden := ""
	if len(p.Tasks) > 0 {
		hidden = " hidden"
	}
	b.WriteString(`<p id="empty"` + hidden + `>No tasks yet.</p>` + "\n")

	b.WriteString(`<section id="tasks">` + "\n")
	b.WriteString(RenderCards(p.Tasks, p.Location))
	b.WriteString("</section>\n</body>\n</html>\n")
	return b.String()
}

func statusKindOrInfo(k StatusKind) StatusKind {
	if k == "" {
		return StatusInfo
	}
	return k
}
