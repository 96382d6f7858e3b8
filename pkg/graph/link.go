package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Link is a directed edge from an output slot to an input slot.
type Link struct {
	ID         LinkID
	OriginID   int // origin node id
	OriginSlot int // origin output index
	TargetID   int // target node id
	TargetSlot int // target input index
	Type       string

	// Data carries the last value written to the origin output.
	Data any
}

// MarshalJSON encodes the link as the tuple
// [id, origin_id, origin_slot, target_id, target_slot, type].
func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{l.ID, l.OriginID, l.OriginSlot, l.TargetID, l.TargetSlot, l.Type})
}

// linkObject is the object form used by very old files.
type linkObject struct {
	ID         LinkID          `json:"id"`
	OriginID   int             `json:"origin_id"`
	OriginSlot int             `json:"origin_slot"`
	TargetID   int             `json:"target_id"`
	TargetSlot int             `json:"target_slot"`
	Type       json.RawMessage `json:"type"`
}

// UnmarshalJSON accepts both the tuple form and the object form.
func (l *Link) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj linkObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*l = Link{
			ID:         obj.ID,
			OriginID:   obj.OriginID,
			OriginSlot: obj.OriginSlot,
			TargetID:   obj.TargetID,
			TargetSlot: obj.TargetSlot,
			Type:       decodeType(obj.Type),
		}
		return nil
	}

	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) < 5 {
		return fmt.Errorf("link tuple has %d elements, want 6", len(tuple))
	}
	ints := make([]int, 5)
	for i := range ints {
		if err := json.Unmarshal(tuple[i], &ints[i]); err != nil {
			return fmt.Errorf("link tuple element %d: %w", i, err)
		}
	}
	*l = Link{
		ID:         LinkID(ints[0]),
		OriginID:   ints[1],
		OriginSlot: ints[2],
		TargetID:   ints[3],
		TargetSlot: ints[4],
	}
	if len(tuple) > 5 {
		l.Type = decodeType(tuple[5])
	}
	return nil
}

// decodeType accepts string, numeric or null type tags. Numeric tags come
// from event slots in older files.
func decodeType(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// LinkList is the serialized link table. It decodes from either a JSON array
// of links or an object keyed by link id.
type LinkList []Link

// UnmarshalJSON implements json.Unmarshaler.
func (ll *LinkList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ll = nil
		return nil
	}
	if data[0] == '{' {
		var byID map[string]Link
		if err := json.Unmarshal(data, &byID); err != nil {
			return err
		}
		out := make(LinkList, 0, len(byID))
		for _, l := range byID {
			out = append(out, l)
		}
		slices.SortFunc(out, func(a, b Link) int { return int(a.ID) - int(b.ID) })
		*ll = out
		return nil
	}
	var out []Link
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*ll = out
	return nil
}
