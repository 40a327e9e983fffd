package event_bus

// Collection identifiers double as the event types on the bus, so a live
// stream can subscribe per collection.
const (
	CollectionTasks   EventType = "tasks"
	CollectionBudget  EventType = "budget_items"
	CollectionNotes   EventType = "notes"
	CollectionPresets EventType = "people_presets"
)

// Collections lists every collection that emits change events.
var Collections = []EventType{CollectionTasks, CollectionBudget, CollectionNotes, CollectionPresets}

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// RecordChanged is published after every successful mutation of a collection
// record. Record carries the wire representation of the record for created
// and updated actions, and is nil for deletions.
type RecordChanged struct {
	Collection EventType `json:"collection"`
	Action     Action    `json:"action"`
	Id         string    `json:"id"`
	ProjectId  string    `json:"projectId,omitempty"`
	Record     any       `json:"record,omitempty"`
}
