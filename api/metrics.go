package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "tasktrack/api"

// refreshMetrics collects timing and outcome data for a refresh-driving
// request and emits it as one structured log line plus one span.
type refreshMetrics struct {
	logger *log.Logger
	start  time.Time
	span   trace.Span

	refreshDuration time.Duration
	tasksReturned   int
	errorStage      string
}

func newRefreshMetrics(ctx context.Context, logger *log.Logger) (*refreshMetrics, context.Context) {
	m := &refreshMetrics{logger: logger, start: time.Now()}
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, "refresh")
	m.span = span
	return m, spanCtx
}

func (m *refreshMetrics) ObserveRefresh(d time.Duration) {
	if d <= 0 {
		return
	}
	m.refreshDuration = d
}

func (m *refreshMetrics) SetTasksReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.tasksReturned = count
}

func (m *refreshMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log finalizes the span and writes the request log line. Severity
// follows the response status, or the error when no status was written.
func (m *refreshMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	sevText, sevNumber := severityForStatus(status, err)

	if m.span != nil {
		m.span.SetAttributes(
			attribute.String("route", "/api/refresh"),
			attribute.Int("http.status_code", status),
			attribute.Int("tasks_returned", m.tasksReturned),
			attribute.String("severity_text", sevText),
			attribute.Int("severity_number", sevNumber),
		)
		if m.errorStage != "" {
			m.span.SetAttributes(attribute.String("error_stage", m.errorStage))
		}
		if err != nil {
			m.span.RecordError(err)
			m.span.SetStatus(codes.Error, err.Error())
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}

	fields := log.Fields{
		"route":          "/api/refresh",
		"status":         status,
		"total_ms":       durationToMillis(time.Since(m.start)),
		"tasks_returned": m.tasksReturned,
	}
	if m.refreshDuration > 0 {
		fields["refresh_ms"] = durationToMillis(m.refreshDuration)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	entry := m.logger.WithFields(fields)
	switch sevText {
	case "ERROR":
		entry.Error("refresh request")
	case "WARN":
		entry.Warn("refresh request")
	default:
		entry.Info("refresh request")
	}
}

// severityForStatus maps an HTTP status (or a bare error) to OTel log
// severity text and number.
func severityForStatus(status int, err error) (string, int) {
	switch {
	case status >= 500 || (status == 0 && err != nil):
		return "ERROR", 17
	case status >= 400:
		return "WARN", 13
	default:
		return "INFO", 9
	}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
