package main

import (
	"fmt"
	"html/template"
	"io/fs"

	webassets "github.com/johnqtcg/spoon/web"
)

func loadTemplate() (*template.Template, error) {
	tmpl, err := template.ParseFS(webassets.FS, "templates/index.html")
	if err == nil {
		return tmpl, nil
	}

	fallback, fallbackErr := template.New("index").Parse(defaultIndexTemplate)
	if fallbackErr != nil {
		return nil, fmt.Errorf("parse embedded template: %w", err)
	}
	return fallback, nil
}

func staticFS() (fs.FS, error) {
	sub, err := fs.Sub(webassets.FS, "static")
	if err != nil {
		return nil, fmt.Errorf("open embedded static assets: %w", err)
	}
	return sub, nil
}

const defaultIndexTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Spoon - Project Insights</title>
</head>
<body>
  <main>
    <h1>Spoon</h1>
    <form method="post" action="/analyze/repository">
      <input type="hidden" name="format" value="html">
      <label for="url">GitHub URL</label>
      <input id="url" name="url" type="text" required value="{{ .URL }}">
      <button type="submit">Analyze</button>
    </form>
    {{ if .Error }}<p class="error">{{ .Error }}</p>{{ end }}
    {{ if .Size }}<p class="source">{{ .Source }} ({{ .Size }})</p>{{ end }}
    {{ if .Markdown }}<pre>{{ .Markdown }}</pre>{{ end }}
  </main>
</body>
</html>`
