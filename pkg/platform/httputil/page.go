package httputil

import (
	"html/template"
	"net/http"
)

var notFoundPage = template.Must(template.New("not-found").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Business not found</title></head>
<body>
<h1>Business not found</h1>
<p>We could not find a business at this address.</p>
<p><a href="{{.}}">Go to the homepage</a></p>
</body>
</html>
`))

// WriteNotFoundPage renders the static 404 page for unknown tenant addresses,
// linking back to homeURL.
func WriteNotFoundPage(w http.ResponseWriter, homeURL string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_ = notFoundPage.Execute(w, homeURL)
}
