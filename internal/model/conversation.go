package model

import "time"

// ConversationTurn is one customer message and the assistant response it
// received, recorded by the chat pipeline.
type ConversationTurn struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenant_id"`
	CustomerIdentifier string    `json:"customer_identifier,omitempty"`
	Message            string    `json:"customer_message"`
	Response           string    `json:"ai_response"`
	Sequence           int       `json:"message_count"`
	ProductsReferenced []string  `json:"products_referenced,omitempty"`
	Intent             string    `json:"intent_detected,omitempty"`
	SentimentScore     *float64  `json:"sentiment_score,omitempty"` // in [-1.0, 1.0] when present
	ResponseTimeMS     *int      `json:"response_time_ms,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// SearchText returns the combined message and response text for ranking.
func (c *ConversationTurn) SearchText() string {
	return c.Message + " " + c.Response
}
