package event

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// EventHandler returns nil when the record is of no interest to it.
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

type RegisteredHandler struct {
	Name   string
	Handle EventHandler
}

var EventHandlers []RegisteredHandler

// RegisterHandler appends handler, or replaces the handler already registered under name.
func RegisterHandler(name string, handler EventHandler) {
	for i, h := range EventHandlers {
		if h.Name == name {
			EventHandlers[i].Handle = handler
			return
		}
	}
	EventHandlers = append(EventHandlers, RegisteredHandler{Name: name, Handle: handler})
}

var InvokeHandlersFunc = invokeHandlers

// invokeHandlers runs every handler not yet recorded in record.HandledBy. A panicking
// handler counts as a failed one.
func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := []EventHandleResult{}
	for _, handler := range EventHandlers {
		if record.HandledBy.Contains(handler.Name) {
			continue
		}
		log := logrus.WithFields(logrus.Fields{"event": record.ID, "category": record.EventCategory, "handler": handler.Name})
		start := time.Now()
		r := safeHandle(handler, record)
		if r == nil {
			results = append(results, EventHandleResult{Success: true, Message: "skipped", HandlerIdentifier: handler.Name})
			continue
		}
		r.HandlerIdentifier = handler.Name
		results = append(results, *r)

		log = log.WithField("elapsed", time.Since(start))
		if r.Success {
			log.Info("event handled: ", r.Message)
		} else {
			log.Error("event handling failed: ", r.Message)
		}
	}
	return results
}

func safeHandle(handler RegisteredHandler, record *EventRecord) (r *EventHandleResult) {
	defer func() {
		if ret := recover(); ret != nil {
			r = &EventHandleResult{Success: false, Message: fmt.Sprintf("panic: %v", ret)}
		}
	}()
	return handler.Handle(record)
}
