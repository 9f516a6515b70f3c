// Package templates renders the shortener page and the fragments returned by the /ui-api endpoints.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// StatusID is the id of the status display. Every /ui-api response replaces it.
const StatusID = "responseMsg"

// InputID is the id of the shared input field
const InputID = "urlInput"

// HTMXSrc is the htmx build loaded by the page
const HTMXSrc = "https://unpkg.com/htmx.org@2.0.4"

type button struct {
	action string
	label  string
}

var buttons = []button{
	{"save", "Save"},
	{"search", "Search"},
	{"list", "List"},
	{"stats", "Stats"},
	{"update", "Update"},
	{"delete", "Delete"},
}

// HomePage renders the page: one input, one button per action and the status display
func HomePage() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>URL Shortener</title>
<script src="`+HTMXSrc+`"></script>
<script src="/static/app.js" defer></script>
</head>
<body>
<main>
<h1>URL Shortener</h1>
<input type="text" id="`+InputID+`" name="url" placeholder="URL or short code" autocomplete="off">
<div class="actions">
`); err != nil {
			return err
		}

		for _, b := range buttons {
			if err := actionButton(b).Render(ctx, w); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "</div>\n"); err != nil {
			return err
		}
		if err := Status("").Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</main>\n</body>\n</html>\n")
		return err
	})
}

func actionButton(b button) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<button type="button" id="`+b.action+`Btn"`+
			` hx-post="/ui-api/`+b.action+`"`+
			` hx-include="#`+InputID+`"`+
			` hx-target="#`+StatusID+`"`+
			` hx-swap="outerHTML">`+
			templ.EscapeString(b.label)+"</button>\n")
		return err
	})
}

// Status renders the status display with msg as its text
func Status(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<pre id="`+StatusID+`" aria-live="polite">`+templ.EscapeString(msg)+"</pre>")
		return err
	})
}

// AppScript handles the events the /ui-api endpoints send in the HX-Trigger header.
// Rejected requests (400, 413, 429) still answer with a status fragment: it is swapped in although htmx skips error responses by default.
// Error bodies that are not a status fragment are left alone so the status display is never replaced by plain text.
const AppScript = `(function () {
  "use strict";

  document.body.addEventListener("htmx:beforeSwap", function (evt) {
    var target = evt.detail.target;
    if (evt.detail.xhr.status >= 400 && target && target.id === "` + StatusID + `" &&
        evt.detail.serverResponse.indexOf('id="` + StatusID + `"') !== -1) {
      evt.detail.shouldSwap = true;
      evt.detail.isError = false;
    }
  });

  document.body.addEventListener("shortener:alert", function (evt) {
    window.alert(evt.detail.value);
  });

  document.body.addEventListener("shortener:clear", function () {
    var input = document.getElementById("` + InputID + `");
    if (input) {
      input.value = "";
    }
  });

  document.body.addEventListener("shortener:open", function (evt) {
    window.open(evt.detail.value, "_blank");
  });
})();
`
