// internal/game/utils.go
package game

import (
	"encoding/json"
	"fmt"
)

// EncodeEvent marshals a GameEvent into JSON bytes for the wire.
func EncodeEvent(ev GameEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	return data, nil
}
