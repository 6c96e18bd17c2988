package xdsmjs

import (
	"encoding/json"
	"html/template"
	"io"
)

// Default viewer assets.
const (
	DefaultScriptURL = "https://unpkg.com/xdsmjs/dist/xdsmjs.js"
	DefaultStyleURL  = "https://unpkg.com/xdsmjs/dist/xdsmjs.css"
)

// PageOptions configures the HTML page.
type PageOptions struct {
	Title     string
	ScriptURL string
	StyleURL  string
	// Embeddable leaves out the document shell so the output can be pasted
	// into another page.
	Embeddable bool
	// DataFile references an external JSON file instead of embedding the
	// data.
	DataFile string
}

var pageTmpl = template.Must(template.New("page").Parse(`{{define "body" -}}
<link rel="stylesheet" href="{{.StyleURL}}">
<script type="text/javascript" src="{{.ScriptURL}}"></script>
<div class="xdsm-toolbar"></div>
{{if .DataFile}}<div class="xdsm2" data-mdo-file="{{.DataFile}}"></div>{{else}}<div class="xdsm2" data-mdo="{{.Data}}"></div>{{end}}
<script type="text/javascript">
document.addEventListener('DOMContentLoaded', function() {
  xdsmjs.XDSMjs().createXdsm();
});
</script>
{{- end}}{{if .Embeddable}}{{template "body" .}}
{{else}}<!DOCTYPE html>
<html class="js" lang="">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{template "body" .}}
</body>
</html>
{{end}}`))

type page struct {
	PageOptions
	Data string
}

// WritePage writes an HTML page showing data in the XDSMjs viewer.
func WritePage(w io.Writer, data Data, opts PageOptions) error {
	if opts.ScriptURL == "" {
		opts.ScriptURL = DefaultScriptURL
	}
	if opts.StyleURL == "" {
		opts.StyleURL = DefaultStyleURL
	}
	if opts.Title == "" {
		opts.Title = "XDSM"
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return pageTmpl.Execute(w, page{PageOptions: opts, Data: string(raw)})
}
