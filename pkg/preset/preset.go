package preset

import (
	"encoding/json"
	"fmt"
	"time"
)

// Preset is a named group of people that can be applied to a budget item's
// payer roster in one step.
type Preset struct {
	Id        string
	Name      string
	People    []string
	CreatedAt time.Time
}

func EncodePeople(people []string) ([]byte, error) {
	if people == nil {
		people = []string{}
	}
	return json.Marshal(people)
}

func DecodePeople(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var people []string
	if err := json.Unmarshal(raw, &people); err != nil {
		return nil, fmt.Errorf("invalid people list: %w", err)
	}
	return people, nil
}
