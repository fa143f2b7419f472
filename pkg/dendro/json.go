package dendro

import (
	"encoding/json"
	"math"
)

type dendroJSON[T any] struct {
	Level    *float64     `json:"level"`
	Members  []T          `json:"members"`
	Children []*Dendro[T] `json:"children,omitempty"`
}

// MarshalJSON encodes d as {"level", "members", "children"}. A level of
// +Inf, which only the empty dendrogram has, is written as null.
func (d Dendro[T]) MarshalJSON() ([]byte, error) {
	out := dendroJSON[T]{Members: d.Members, Children: d.Children}
	if !math.IsInf(d.Level, 1) {
		l := d.Level
		out.Level = &l
	}
	if out.Members == nil {
		out.Members = []T{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (d *Dendro[T]) UnmarshalJSON(data []byte) error {
	var in dendroJSON[T]
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	d.Level = math.Inf(1)
	if in.Level != nil {
		d.Level = *in.Level
	}
	d.Members = in.Members
	if len(d.Members) == 0 {
		d.Members = nil
	}
	d.Children = in.Children
	return nil
}
