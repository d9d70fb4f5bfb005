package admin

import (
	"errors"
	"html/template"
	"net/http"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/domain/remindlog"
	"remindbot/internal/http/handlers/response"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/r3labs/sse/v2"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>remindbot admin</title></head>
<body>
<h1>remindbot admin</h1>
<ul>
<li><a href="/admin/reminds">Calendar requests</a></li>
<li><a href="/admin/events?stream={{.Stream}}">Live notifications</a></li>
<li><a href="/metrics">Metrics</a></li>
</ul>
</body>
</html>
`))

var remindsTemplate = template.Must(template.New("reminds").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Calendar requests</title></head>
<body>
<h1>Calendar requests</h1>
{{if .Rows}}
<table border="1" cellpadding="4">
<tr><th>ID</th><th>Received</th><th>User</th><th>Title</th><th>Start</th><th>Text</th></tr>
{{range .Rows}}
<tr><td>{{.ID}}</td><td>{{.CreatedAt}}</td><td>{{.User}}</td><td>{{.Title}}</td><td>{{.StartAt}}</td><td>{{.Text}}</td></tr>
{{end}}
</table>
{{else}}
<p>No requests yet.</p>
{{end}}
</body>
</html>
`))

type Handler struct {
	log       logging.Logger
	logs      remindlog.Repository
	sseServer *sse.Server
	stream    string
}

func New(log logging.Logger, logs remindlog.Repository, sseServer *sse.Server, stream string) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if logs == nil {
		panic(e.NewNilArgumentError("logs"))
	}
	if sseServer == nil {
		panic(e.NewNilArgumentError("sseServer"))
	}
	if stream == "" {
		panic(e.NewInvalidStateError("stream must not be empty"))
	}
	return &Handler{log: log, logs: logs, sseServer: sseServer, stream: stream}
}

func (h *Handler) Index(rw http.ResponseWriter, r *http.Request) {
	response.RenderHTML(rw, indexTemplate, struct{ Stream string }{Stream: h.stream}, http.StatusOK)
}

type row struct {
	ID        remindlog.ID
	CreatedAt string
	User      string
	Title     string
	StartAt   string
	Text      string
}

func (h *Handler) Reminds(rw http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		response.RenderError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.logs.ReadLatest(r.Context(), limit)
	if err != nil {
		logging.Error(r.Context(), h.log, err)
		response.RenderInternalError(rw)
		return
	}

	rows := make([]row, 0, len(entries))
	for _, entry := range entries {
		startAt := "-"
		if entry.StartAt.IsPresent {
			startAt = reminder.FormatTime(entry.StartAt.Value)
		}
		user := entry.UserName
		if user == "" {
			user = string(entry.UserID)
		}
		rows = append(rows, row{
			ID:        entry.ID,
			CreatedAt: reminder.FormatTime(entry.CreatedAt),
			User:      user,
			Title:     entry.Title,
			StartAt:   startAt,
			Text:      entry.Text,
		})
	}
	response.RenderHTML(rw, remindsTemplate, struct{ Rows []row }{Rows: rows}, http.StatusOK)
}

func parseLimit(r *http.Request) (uint, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return remindlog.LatestLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	err = validation.Validate(limit, validation.Min(1), validation.Max(remindlog.LatestLimit))
	if err != nil {
		return 0, err
	}
	return uint(limit), nil
}

// Events streams delivered notifications as server-sent events.
func (h *Handler) Events(rw http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("stream") != h.stream {
		response.RenderError(rw, "invalid stream", http.StatusBadRequest)
		return
	}
	if !h.sseServer.StreamExists(h.stream) {
		h.sseServer.CreateStream(h.stream)
	}

	h.log.Info(r.Context(), "Subscribed to notification feed.", logging.Entry("remoteAddr", r.RemoteAddr))
	h.sseServer.ServeHTTP(rw, r)
	h.log.Info(r.Context(), "Unsubscribed from notification feed.", logging.Entry("remoteAddr", r.RemoteAddr))
}
