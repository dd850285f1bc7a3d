package model

import "time"

// Event types recognized by the engine. The tag is an open set: unrecognized
// types are stored and counted but never specially interpreted.
const (
	EventQuestionAsked       = "question_asked"
	EventProductView         = "product_view"
	EventOrderLookup         = "order_lookup"
	EventConversationStarted = "conversation_started"
	EventConversationEnded   = "conversation_ended"
	EventCSVUpload           = "csv_upload"
	EventSettingsUpdated     = "settings_updated"
)

// Payload keys the aggregator extracts from product_view events.
const (
	PayloadProductID   = "product_id"
	PayloadProductName = "product_name"
)

// AnalyticsEvent is one interaction recorded by the event emitter.
type AnalyticsEvent struct {
	ID                 string         `json:"id"`
	TenantID           string         `json:"tenant_id"`
	Type               string         `json:"event_type"`
	Payload            map[string]any `json:"event_data,omitempty"`
	SessionID          string         `json:"session_id,omitempty"`
	CustomerIdentifier string         `json:"customer_identifier,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// PayloadString returns a string payload field, or "" when absent or not a
// string. Malformed payloads are a data integrity warning, never an error.
func (e *AnalyticsEvent) PayloadString(key string) string {
	if e.Payload == nil {
		return ""
	}
	s, _ := e.Payload[key].(string)
	return s
}
