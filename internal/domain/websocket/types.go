// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Domain events (server -> client)
	EventLeadStatusChanged EventType = "lead.status_changed"
	EventCommissionCreated EventType = "commission.created"
	EventPayoutRequested   EventType = "payout.requested"
	EventPayoutResolved    EventType = "payout.resolved"
	EventFollowUpsDue      EventType = "lead.followups_due"

	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	ID        string      `json:"id,omitempty"`
}

type ChannelType string

const (
	ChannelLeads   ChannelType = "leads"
	ChannelPayouts ChannelType = "payouts"
	ChannelSystem  ChannelType = "system"
)

// DefaultChannels are subscribed on connect.
var DefaultChannels = []ChannelType{ChannelLeads, ChannelPayouts, ChannelSystem}

// ChannelFor maps a domain event to the channel it is delivered on.
func ChannelFor(t EventType) ChannelType {
	switch t {
	case EventLeadStatusChanged, EventCommissionCreated, EventFollowUpsDue:
		return ChannelLeads
	case EventPayoutRequested, EventPayoutResolved:
		return ChannelPayouts
	}
	return ChannelSystem
}

type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type LeadStatusChangedData struct {
	LeadID      string `json:"lead_id"`
	StudentName string `json:"student_name"`
	From        string `json:"from"`
	To          string `json:"to"`
}

type CommissionCreatedData struct {
	CommissionID string  `json:"commission_id"`
	LeadID       string  `json:"lead_id"`
	Amount       float64 `json:"amount"`
}

type PayoutData struct {
	PayoutID    string  `json:"payout_id"`
	AgentID     string  `json:"agent_id"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
	Notes       string  `json:"notes,omitempty"`
}

type FollowUpsDueData struct {
	CenterID string   `json:"center_id"`
	Count    int      `json:"count"`
	LeadIDs  []string `json:"lead_ids"`
}

func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
