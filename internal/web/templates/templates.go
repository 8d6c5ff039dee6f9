// Package templates renders the server-side HTML of the web UI as templ
// components.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/a-h/templ"
)

// IndexParams is the data behind the index page. A zero Email renders the
// signed-out view.
type IndexParams struct {
	Email       string
	Name        string
	SignInReady bool
	Vehicles    []core.Vehicle
	Month       *core.Summary
	Error       *core.UserMessage
}

// htmlWriter stops writing after the first error so components can emit
// markup without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) printf(format string, args ...any) {
	h.text(fmt.Sprintf(format, args...))
}

// Index renders the full page.
func Index(p IndexParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>Gas Log</title></head><body><main>`)
		h.raw(`<h1>Gas Log</h1>`)

		if p.Error != nil {
			if err := ErrorAlert(p.Error.Message, p.Error.Action, p.Error.Code).Render(ctx, w); err != nil {
				return err
			}
		}

		if p.Email == "" {
			signedOut(h, p.SignInReady)
			h.raw(`</main></body></html>`)
			return h.err
		}

		h.raw(`<header><p>Signed in as <strong>`)
		h.text(displayName(p))
		h.raw(`</strong></p><form method="post" action="/auth/logout"><button type="submit">Sign out</button></form></header>`)

		if p.Month != nil {
			monthSummary(h, p.Month)
		}
		importForm(h, p.Vehicles)
		exportLinks(h)

		h.raw(`</main></body></html>`)
		return h.err
	})
}

// ErrorAlert renders an error message with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-error" role="alert"><p>`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<small>Code: `)
			h.text(code)
			h.raw(`</small>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

func displayName(p IndexParams) string {
	if p.Name != "" {
		return p.Name + " (" + p.Email + ")"
	}
	return p.Email
}

func signedOut(h *htmlWriter, ready bool) {
	if !ready {
		h.raw(`<p>Google sign-in is not configured.</p>`)
		return
	}
	h.raw(`<p><a href="/auth/login">Sign in with Google</a> to keep your fuel log in your own spreadsheet.</p>`)
}

func monthSummary(h *htmlWriter, s *core.Summary) {
	h.raw(`<section><h2>This month</h2><dl>`)
	h.raw(`<dt>Fill-ups</dt><dd>`)
	h.printf("%d", s.FillUps)
	h.raw(`</dd><dt>Spent</dt><dd>`)
	h.printf("$%.2f", s.TotalSpending)
	h.raw(`</dd><dt>Gallons</dt><dd>`)
	h.printf("%.2f", s.TotalGallons)
	h.raw(`</dd><dt>Average MPG</dt><dd>`)
	h.printf("%.1f", s.AverageMPG)
	h.raw(`</dd></dl></section>`)
}

func importForm(h *htmlWriter, vehicles []core.Vehicle) {
	h.raw(`<section><h2>Import CSV</h2>`)
	if len(vehicles) == 0 {
		h.raw(`<p>Add a vehicle before importing entries.</p></section>`)
		return
	}
	h.raw(`<form method="post" action="/api/import" enctype="multipart/form-data">`)
	h.raw(`<label>Vehicle <select name="vehicle_id">`)
	for _, v := range vehicles {
		h.raw(`<option value="`)
		h.text(v.ID)
		h.raw(`"`)
		if v.IsDefault {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(v.Name)
		h.raw(`</option>`)
	}
	h.raw(`</select></label>`)
	h.raw(`<input type="file" name="file" accept=".csv,.tsv,.txt" required>`)
	h.raw(`<button type="submit">Import</button></form></section>`)
}

func exportLinks(h *htmlWriter) {
	h.raw(`<section><h2>Export</h2><ul>`)
	h.raw(`<li><a href="/api/export/csv">CSV</a></li>`)
	h.raw(`<li><a href="/api/export/xlsx">Excel</a></li>`)
	h.raw(`<li><a href="/api/export/pdf">PDF</a></li>`)
	h.raw(`</ul></section>`)
}
