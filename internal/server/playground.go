package server

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"regexp"
)

var componentNameRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

var playgroundTemplate = template.Must(template.New("playground").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title>Component Playground</title>
    <style>
      body { margin: 0; padding: 24px; font-family: system-ui, sans-serif; background: #f9fafb; }
      .panes { display: grid; grid-template-columns: 1fr 1fr; gap: 24px; }
      textarea { width: 100%; height: 480px; box-sizing: border-box; font-family: monospace; font-size: 13px; background: #111827; color: #f3f4f6; padding: 16px; border-radius: 6px; }
      iframe { width: 100%; height: 480px; border: 1px solid #e5e7eb; border-radius: 6px; background: #fff; }
      button { margin-bottom: 12px; padding: 8px 16px; background: #3b82f6; color: #fff; border: 0; border-radius: 6px; cursor: pointer; }
    </style>
  </head>
  <body>
    <h1>Component Playground{{if .Component}} &middot; {{.Component}}{{end}}</h1>
    <button id="run" type="button">Run Code</button>
    <div class="panes">
      <textarea id="code" spellcheck="false" placeholder="Your component code will appear here...">{{.Code}}</textarea>
      <iframe id="preview" title="Component Preview" sandbox="allow-scripts"></iframe>
    </div>
    <script>
      (function () {
        var component = {{.Component}} || "InteractiveExample";
        var closeScript = "</scr" + "ipt>";
        function run() {
          var code = document.getElementById("code").value.split("</scr" + "ipt").join("<\\/scr" + "ipt");
          document.getElementById("preview").srcdoc = [
            "<!DOCTYPE html><html><head><meta charset=\"utf-8\">",
            "<scr" + "ipt src=\"https://unpkg.com/react@18/umd/react.development.js\">" + closeScript,
            "<scr" + "ipt src=\"https://unpkg.com/react-dom@18/umd/react-dom.development.js\">" + closeScript,
            "<scr" + "ipt src=\"https://unpkg.com/@babel/standalone/babel.min.js\">" + closeScript,
            "<scr" + "ipt src=\"https://cdn.tailwindcss.com\">" + closeScript,
            "</head><body><div id=\"root\"></div>",
            "<scr" + "ipt type=\"text/babel\" data-presets=\"react,typescript\" data-type=\"module\">",
            code,
            "ReactDOM.createRoot(document.getElementById(\"root\")).render(React.createElement(" + component + "));",
            closeScript,
            "</body></html>"
          ].join("\n");
        }
        document.getElementById("run").addEventListener("click", run);
        if (document.getElementById("code").value) {
          run();
        }
      })();
    </script>
  </body>
</html>
`))

type playgroundData struct {
	Code      string
	Component string
}

// HandlePlayground serves an editor prefilled from ?code= with a sandboxed
// live preview rendering ?component=.
func (h *Handler) HandlePlayground(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := playgroundData{Code: q.Get("code")}
	if name := q.Get("component"); componentNameRe.MatchString(name) {
		data.Component = name
	}

	var buf bytes.Buffer
	if err := playgroundTemplate.Execute(&buf, data); err != nil {
		log.Printf("[server] failed to render playground: %v", err)
		http.Error(w, "failed to render playground", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
