package realtime

import "time"

// EventKind adalah himpunan tertutup jenis event realtime. Jangan
// menambah kind lewat string bebas di controller; definisikan di sini
// supaya dispatch di client tetap exhaustive.
type EventKind string

const (
	EventOrderPlaced          EventKind = "ORDER_PLACED"
	EventOrderStatusChanged   EventKind = "ORDER_STATUS_CHANGED"
	EventPaymentFinalized     EventKind = "PAYMENT_FINALIZED"
	EventMenuUpdated          EventKind = "MENU_UPDATED"
	EventWaiterCall           EventKind = "WAITER_CALL"
	EventSessionStatusChanged EventKind = "SESSION_STATUS_CHANGED"
	EventConfigChanged        EventKind = "CONFIG_CHANGED"
	EventForceDisconnect      EventKind = "FORCE_DISCONNECT"
	EventRegistrySnapshot     EventKind = "REGISTRY_SNAPSHOT"
	EventServerLog            EventKind = "SERVER_LOG"
)

// Event adalah pesan server->client. Payload sengaja tipis: client
// memperlakukan setiap event sebagai sinyal untuk re-fetch state lewat
// endpoint sinkron, bukan sebagai sumber kebenaran.
type Event struct {
	Type    EventKind   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type WaiterCallPayload struct {
	CallID    uint      `json:"call_id"`
	TableID   uint      `json:"table_id"`
	TableName string    `json:"table_name"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionStatusPayload struct {
	SessionID uint   `json:"session_id"`
	TableID   uint   `json:"table_id"`
	NewStatus string `json:"new_status"`
}

type ForceDisconnectPayload struct {
	Reason     string `json:"reason"`
	ClientKind string `json:"client_type"`
}

type ServerLogPayload struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

func NewOrderPlacedEvent() Event {
	return Event{Type: EventOrderPlaced}
}

func NewOrderStatusChangedEvent() Event {
	return Event{Type: EventOrderStatusChanged}
}

func NewPaymentFinalizedEvent() Event {
	return Event{Type: EventPaymentFinalized}
}

func NewMenuUpdatedEvent() Event {
	return Event{Type: EventMenuUpdated}
}

func NewWaiterCallEvent(callID, tableID uint, tableName string, at time.Time) Event {
	return Event{Type: EventWaiterCall, Payload: WaiterCallPayload{
		CallID:    callID,
		TableID:   tableID,
		TableName: tableName,
		Timestamp: at,
	}}
}

func NewSessionStatusChangedEvent(sessionID, tableID uint, newStatus string) Event {
	return Event{Type: EventSessionStatusChanged, Payload: SessionStatusPayload{
		SessionID: sessionID,
		TableID:   tableID,
		NewStatus: newStatus,
	}}
}

// NewConfigChangedEvent membawa pasangan key/value yang baru disimpan.
func NewConfigChangedEvent(changed map[string]string) Event {
	return Event{Type: EventConfigChanged, Payload: changed}
}

func NewForceDisconnectEvent(reason string, kind ClientKind) Event {
	return Event{Type: EventForceDisconnect, Payload: ForceDisconnectPayload{
		Reason:     reason,
		ClientKind: string(kind),
	}}
}

func NewRegistrySnapshotEvent(entries []RegistryEntry) Event {
	return Event{Type: EventRegistrySnapshot, Payload: entries}
}

func NewServerLogEvent(level, message string, at time.Time) Event {
	return Event{Type: EventServerLog, Payload: ServerLogPayload{
		Level:   level,
		Message: message,
		Time:    at,
	}}
}
