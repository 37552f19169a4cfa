// Package templates renders the server-side HTML pages.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// StatusParams feeds the landing page.
type StatusParams struct {
	Title         string
	Banner        string
	WritesEnabled bool
	Athletes      int
	Saturday      int
	Sunday        int
	Coaches       int
}

// StatusPage renders the public landing page with the registration banner.
func StatusPage(p StatusParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		state := "open"
		if !p.WritesEnabled {
			state = "closed"
		}
		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<header><h1>%s</h1></header>
<main>
<p class="banner banner-%s">%s</p>
<dl>
<dt>Athletes</dt><dd>%d</dd>
<dt>Saturday</dt><dd>%d</dd>
<dt>Sunday</dt><dd>%d</dd>
<dt>Coaches</dt><dd>%d</dd>
</dl>
<p><a href="/api/template?format=xlsx">Download the upload template</a></p>
</main>
</body>
</html>
`,
			templ.EscapeString(p.Title),
			templ.EscapeString(p.Title),
			state,
			templ.EscapeString(p.Banner),
			p.Athletes, p.Saturday, p.Sunday, p.Coaches,
		)
		return err
	})
}
