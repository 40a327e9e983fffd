package task

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// completionOrder ranks statuses for the completion sort: Pending < In Progress < Completed.
func (s Status) completionOrder() int {
	switch s {
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 0
	}
}

// Update is one progress note on a task.
type Update struct {
	Text      string
	Timestamp time.Time
}

type Task struct {
	Id     string
	Title  string
	Status Status
	// InCharge is the set of assigned people. It must never become empty;
	// the service refuses edits that would empty it.
	InCharge []string
	// Updates is ordered newest-first.
	Updates   []Update
	ProjectId string
	CreatedAt time.Time
}

// LastActivity returns the newest update's timestamp, or CreatedAt for tasks
// without any updates.
func (t Task) LastActivity() time.Time {
	if len(t.Updates) > 0 {
		return t.Updates[0].Timestamp
	}
	return t.CreatedAt
}

// HasAnyOf reports whether at least one of the given people is assigned.
func (t Task) HasAnyOf(people []string) bool {
	for _, p := range people {
		for _, assigned := range t.InCharge {
			if assigned == p {
				return true
			}
		}
	}
	return false
}

type SortBy string

const (
	SortByUpdate     SortBy = "update"
	SortByCompletion SortBy = "completion"
	SortByCreated    SortBy = "created"
)

type Filter struct {
	// Status filters by exact status when set.
	Status Status
	// People keeps tasks with any of the given people assigned.
	People []string
}

// FilterTasks returns a new slice with tasks matching the filter, preserving order.
func FilterTasks(tasks []Task, filter Filter) []Task {
	result := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if len(filter.People) > 0 && !t.HasAnyOf(filter.People) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// SortTasks returns a new slice ordered by the given key. The sort is stable,
// so re-sorting an already sorted slice is a no-op.
func SortTasks(tasks []Task, by SortBy) []Task {
	result := make([]Task, len(tasks))
	copy(result, tasks)
	switch by {
	case SortByUpdate:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].LastActivity().After(result[j].LastActivity())
		})
	case SortByCompletion:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Status.completionOrder() < result[j].Status.completionOrder()
		})
	default: // SortByCreated
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}
	return result
}

type updateRecord struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// DecodeAssignees parses a stored assignee column. Current records hold a
// JSON array of names; records imported from early clients hold a single
// name as a JSON string. Both normalize to a slice here, so nothing past the
// read boundary has to care.
func DecodeAssignees(raw []byte) ([]string, error) {
	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		return names, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil, nil
		}
		return []string{single}, nil
	}
	return nil, fmt.Errorf("unrecognized assignee encoding: %s", raw)
}

// DecodeUpdates parses a stored updates column. Legacy records hold a single
// free-text update as a JSON string; it becomes a one-element history stamped
// with the task's creation time.
func DecodeUpdates(raw []byte, createdAt time.Time) ([]Update, error) {
	var records []updateRecord
	if err := json.Unmarshal(raw, &records); err == nil {
		updates := make([]Update, 0, len(records))
		for _, r := range records {
			updates = append(updates, Update{Text: r.Text, Timestamp: time.UnixMilli(r.Timestamp)})
		}
		return updates, nil
	}
	var legacy string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		if legacy == "" {
			return nil, nil
		}
		return []Update{{Text: legacy, Timestamp: createdAt}}, nil
	}
	return nil, fmt.Errorf("unrecognized updates encoding: %s", raw)
}

func EncodeAssignees(people []string) ([]byte, error) {
	if people == nil {
		people = []string{}
	}
	return json.Marshal(people)
}

func EncodeUpdates(updates []Update) ([]byte, error) {
	records := make([]updateRecord, 0, len(updates))
	for _, u := range updates {
		records = append(records, updateRecord{Text: u.Text, Timestamp: u.Timestamp.UnixMilli()})
	}
	return json.Marshal(records)
}
