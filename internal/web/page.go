package web

import (
	"html/template"
	"net/http"

	"interview-chatter/internal/chat"
)

type pageData struct {
	Messages []chat.Message
	Busy     bool
}

var page = template.Must(template.New("chat").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
{{if .Busy}}<meta http-equiv="refresh" content="1" />{{end}}
<title>AI Interview Generator</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:0;background:#f5f5f7;}
.chat{max-width:720px;margin:0 auto;padding:24px;}
.msg{white-space:pre-wrap;border-radius:12px;padding:12px 16px;margin:8px 0;max-width:85%;}
.user{background:#2563eb;color:#fff;margin-left:auto;}
.assistant{background:#fff;border:1px solid #ddd;}
.system{background:#eef2ff;color:#374151;font-size:14px;}
.actions a,.actions button{display:inline-block;margin:8px 8px 0 0;padding:6px 12px;border-radius:8px;border:1px solid #888;background:#fff;color:#111;text-decoration:none;font-size:14px;cursor:pointer}
.busy{color:#666;font-style:italic;}
form{display:flex;gap:8px;margin-top:16px;}
textarea{flex:1;min-height:48px;border-radius:8px;border:1px solid #ccc;padding:8px;font:inherit;}
</style>
</head>
<body>
<div class="chat">
  <h2>AI Interview Generator</h2>
  {{range .Messages}}
  <div class="msg {{.Role}}">{{.Text}}
    {{if .Interview}}
    <div class="actions">
      <button type="button" onclick="copyInterview('{{.ID}}')">📋 Copy JSON</button>
      <a href="/api/messages/{{.ID}}/download">💾 Download</a>
    </div>
    {{end}}
  </div>
  {{end}}
  {{if .Busy}}<div class="busy">Generating…</div>{{end}}
  <form method="post" action="/messages">
    <textarea name="text" placeholder="Describe the interview you want…" {{if .Busy}}disabled{{end}}></textarea>
    <button type="submit" {{if .Busy}}disabled{{end}}>Send</button>
  </form>
</div>
<script>
async function copyInterview(id) {
  const resp = await fetch('/api/messages/' + id + '/interview');
  if (!resp.ok) { return; }
  await navigator.clipboard.writeText(await resp.text());
}
</script>
</body>
</html>`))

func renderPage(w http.ResponseWriter, data pageData) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	return page.Execute(w, data)
}
