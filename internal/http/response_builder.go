// Package http serves the dashboard, the account chart and the transaction
// table as server rendered pages and htmx partials, plus a small JSON API.
//
// This file holds the fluent builder used for htmx responses and their
// HX-Trigger events.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"fintrack/internal/table"
)

// Client side events raised through HX-Trigger.
const (
	EventTransactionsChanged = "transactions:changed"
	EventTransactionCreated  = "transaction:created"
	EventFormReset           = "form:reset"
	EventShowNotification    = "show-notification"
)

// HTMXResponseBuilder collects HX-Trigger events, headers and a body and
// writes them in one go.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerTransactionsChanged tells the chart and the table of accountID to
// reload.
func (b *HTMXResponseBuilder) TriggerTransactionsChanged(accountID string) *HTMXResponseBuilder {
	return b.Trigger(EventTransactionsChanged, map[string]string{"account": accountID})
}

func (b *HTMXResponseBuilder) TriggerTransactionCreated(id, accountID string) *HTMXResponseBuilder {
	return b.Trigger(EventTransactionCreated, map[string]string{"id": id, "account": accountID})
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(EventFormReset, struct{}{})
}

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification raises a toast. Only one toast fits in a response; a
// later call replaces an earlier one.
func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger(EventShowNotification, map[string]any{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// TriggerNotices turns table notices into toasts. The last notice wins.
func (b *HTMXResponseBuilder) TriggerNotices(notices []table.Notice) *HTMXResponseBuilder {
	for _, n := range notices {
		switch n.Level {
		case table.NoticeError:
			b.TriggerErrorNotification(n.Message)
		case table.NoticeSuccess:
			b.TriggerSuccessNotification(n.Message)
		default:
			b.TriggerNotification(NotificationInfo, n.Message, 3000)
		}
	}
	return b
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	b.body = []byte(content)
	return b
}

func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// BodyJSON encodes v as the body. An encoding failure turns the response
// into a 500.
func (b *HTMXResponseBuilder) BodyJSON(v any) *HTMXResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		b.headers["Content-Type"] = "text/plain; charset=utf-8"
		b.body = []byte("failed to encode response")
		return b
	}
	b.headers["Content-Type"] = "application/json"
	b.body = data
	return b
}

func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse renders message as an escaped error fragment.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// BadGatewayError reports a failing upstream store and raises an error toast.
func BadGatewayError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadGateway, message).TriggerErrorNotification(message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// JSONError is the API counterpart of ErrorResponse.
func JSONError(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().Status(statusCode).BodyJSON(map[string]string{"error": message})
}
