package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Lot lifecycle events
	EventLotReceived    = "inventory.lot.received"
	EventLotDispensed   = "inventory.lot.dispensed"
	EventLotTransferred = "inventory.lot.transferred"
	EventLotDisposed    = "inventory.lot.disposed"
	EventLotThawed      = "inventory.lot.thawed"

	// Alert events
	EventLotExpiring = "inventory.lot.expiring"

	// Master data events
	EventMasterDataReplaced = "inventory.master.replaced"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventory.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Lot lifecycle events

// LotReceivedEvent is published when a new production lot enters stock
type LotReceivedEvent struct {
	LotID        string     `json:"lot_id"`
	DrugName     string     `json:"drug_name"`
	BatchID      string     `json:"batch_id"`
	Quantity     float64    `json:"quantity"`
	Location     string     `json:"location"`
	Status       string     `json:"status"`
	DateProduced *time.Time `json:"date_produced,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	ReceivedBy   string     `json:"received_by"`
}

// LotDispensedEvent is published when stock is dispensed from a location
type LotDispensedEvent struct {
	DrugName    string   `json:"drug_name"`
	Location    string   `json:"location"`
	Quantity    float64  `json:"quantity"`
	LotIDs      []string `json:"lot_ids"`
	DispensedBy string   `json:"dispensed_by"`
}

// LotTransferredEvent is published when a lot moves between locations
type LotTransferredEvent struct {
	LotID         string  `json:"lot_id"`
	DrugName      string  `json:"drug_name"`
	Quantity      float64 `json:"quantity"`
	FromLocation  string  `json:"from_location"`
	ToLocation    string  `json:"to_location"`
	TransferredBy string  `json:"transferred_by"`
}

// LotDisposedEvent is published when expired stock is disposed
type LotDisposedEvent struct {
	LotID      string     `json:"lot_id"`
	DrugName   string     `json:"drug_name"`
	Quantity   float64    `json:"quantity"`
	Location   string     `json:"location"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	DisposedBy string     `json:"disposed_by"`
}

// LotThawedEvent is published when a frozen lot is moved to cold storage
type LotThawedEvent struct {
	LotID         string     `json:"lot_id"`
	DrugName      string     `json:"drug_name"`
	Quantity      float64    `json:"quantity"`
	Location      string     `json:"location"`
	NewExpiryDate *time.Time `json:"new_expiry_date,omitempty"`
	ThawedBy      string     `json:"thawed_by"`
}

// Alert events

// LotExpiringEvent is published when a lot is within the expiry alert window
type LotExpiringEvent struct {
	LotID      string     `json:"lot_id"`
	DrugName   string     `json:"drug_name"`
	BatchID    string     `json:"batch_id"`
	Location   string     `json:"location"`
	Quantity   float64    `json:"quantity"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	DaysLeft   int        `json:"days_left"`
	Severity   string     `json:"severity"`
}

// Master data events

// MasterDataReplacedEvent is published when an admin replaces a master table
type MasterDataReplacedEvent struct {
	Table      string `json:"table"`
	RowCount   int    `json:"row_count"`
	ReplacedBy string `json:"replaced_by"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
