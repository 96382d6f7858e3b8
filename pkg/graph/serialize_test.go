package graph

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/slotgraph/pkg/errors"
)

func buildFanIn(t *testing.T) *Graph {
	t.Helper()
	g := newTestGraph(t)
	a := add(t, g, newSource())
	b := add(t, g, newSource())
	dst := add(t, g, newMultiTarget())
	a.Pos = [2]float64{100, 100}
	dst.Properties["label"] = "sum"
	connect(t, a, 0, dst, 0)
	connect(t, b, 0, dst, 0)
	g.Extra["author"] = "tests"
	return g
}

func TestSerialize(t *testing.T) {
	g := buildFanIn(t)
	d := g.Serialize()

	if d.Version != CurrentVersion || d.LastNodeID != 3 || d.LastLinkID != 2 || d.ID != "test" {
		t.Errorf("header = %+v", d)
	}
	if len(d.Nodes) != 3 || d.Nodes[2].Type != "test/multi_target" {
		t.Fatalf("nodes = %+v", d.Nodes)
	}
	in := d.Nodes[2].Inputs[0]
	if !in.AllowMultiple || !slices.Equal(in.Links, []LinkID{1, 2}) || in.Link != nil {
		t.Errorf("multi input = %+v", in)
	}
	if out := d.Nodes[2].Outputs[0]; out.Links == nil {
		t.Error("unconnected output must serialize an empty links array")
	}
	if len(d.Links) != 2 || d.Links[1] != (Link{ID: 2, OriginID: 2, TargetID: 3, Type: "number"}) {
		t.Errorf("links = %+v", d.Links)
	}
	if d.Groups == nil {
		t.Error("groups should serialize as an empty array")
	}
}

func TestMarshalLinkTuple(t *testing.T) {
	b, err := Marshal(buildFanIn(t))
	if err != nil {
		t.Fatal(err)
	}
	var raw struct {
		Links [][]any `json:"links"`
		Nodes []struct {
			Inputs []map[string]any `json:"inputs"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatal(err)
	}
	want := []any{2.0, 2.0, 0.0, 3.0, 0.0, "number"}
	if !slices.Equal(raw.Links[1], want) {
		t.Errorf("link tuple = %v, want %v", raw.Links[1], want)
	}
	if _, ok := raw.Nodes[2].Inputs[0]["link"]; ok {
		t.Error("current format must not write the legacy link field")
	}
}

func TestRoundTrip(t *testing.T) {
	g := buildFanIn(t)
	b, err := Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	data, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}

	loaded := New(testFactory)
	if err := loaded.Configure(data); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	mustValidate(t, loaded)

	if loaded.ID != "test" || loaded.NodeCount() != 3 || loaded.LinkCount() != 2 {
		t.Errorf("loaded = id %s, %d nodes, %d links", loaded.ID, loaded.NodeCount(), loaded.LinkCount())
	}
	dst := loaded.NodeByID(3)
	if nodes := dst.GetInputNodes(0); len(nodes) != 2 || nodes[0].ID != 1 || nodes[1].ID != 2 {
		t.Errorf("fan-in origins = %v", ids(nodes))
	}
	if dst.Properties["label"] != "sum" || loaded.NodeByID(1).Pos != [2]float64{100, 100} {
		t.Error("node state should survive the round trip")
	}
	if loaded.Extra["author"] != "tests" {
		t.Errorf("extra = %v", loaded.Extra)
	}

	// New ids continue after the loaded counters.
	n := add(t, loaded, newSource())
	if n.ID != 4 {
		t.Errorf("next node id = %d, want 4", n.ID)
	}
	l := connect(t, n, 0, dst, 0)
	if l.ID != 3 {
		t.Errorf("next link id = %d, want 3", l.ID)
	}

	again, err := Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, again) {
		t.Error("serializing twice should be deterministic")
	}
}

const legacyGraph = `{
  "last_node_id": 3,
  "last_link_id": 1,
  "nodes": [
    {"id": 1, "type": "test/source", "pos": [100, 100], "size": [100, 30], "flags": {}, "order": 0, "mode": 0,
     "outputs": [{"name": "out", "type": "number", "links": [1]}]},
    {"id": 2, "type": "test/target", "pos": [300, 100], "size": [100, 30], "flags": {}, "order": 1, "mode": 0,
     "inputs": [{"name": "in", "type": "number", "link": 1}],
     "outputs": [{"name": "out", "type": "number", "links": null}]}
  ],
  "links": [[1, 1, 0, 2, 0, "number"]],
  "groups": [],
  "config": {},
  "extra": {},
  "version": 0.4
}`

func TestConfigureLegacyData(t *testing.T) {
	data, err := Unmarshal([]byte(legacyGraph))
	if err != nil {
		t.Fatal(err)
	}
	g := New(testFactory)
	if err := g.Configure(data); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	mustValidate(t, g)

	target := g.FindNodesByType("test/target")[0]
	if !slices.Equal(target.Inputs[0].Links, []LinkID{1}) {
		t.Errorf("migrated links = %v, want [1]", target.Inputs[0].Links)
	}
	if !target.IsInputConnected(0) {
		t.Error("migrated input should be connected")
	}
	if target.Outputs[0].Links == nil {
		t.Error("null output links should become empty")
	}
	if g.LastNodeID() != 3 {
		t.Errorf("LastNodeID = %d, want 3", g.LastNodeID())
	}
	if data.Nodes[1].Inputs[0].Link == nil {
		t.Error("Configure must not modify the caller's data")
	}

	out := g.Serialize()
	if out.Version != CurrentVersion || out.Nodes[1].Inputs[0].Link != nil {
		t.Errorf("re-serialized input = %+v", out.Nodes[1].Inputs[0])
	}
}

func TestMigrate(t *testing.T) {
	one := LinkID(4)
	data := &Data{
		Version: 0.4,
		Nodes: []NodeData{{
			ID:      1,
			Type:    "test/target",
			Inputs:  []InputData{{Name: "a", Link: &one}, {Name: "b"}},
			Outputs: []OutputData{{Name: "out"}},
		}},
	}
	migrated, report := Migrate(data)

	if report.FromVersion != 0.4 || report.LegacyInputs != 1 || report.NullOutputs != 1 || report.Migrated() != 2 {
		t.Errorf("report = %+v", report)
	}
	if migrated.Version != CurrentVersion {
		t.Errorf("version = %v", migrated.Version)
	}
	in := migrated.Nodes[0].Inputs
	if !slices.Equal(in[0].Links, []LinkID{4}) || in[0].Link != nil {
		t.Errorf("input a = %+v", in[0])
	}
	if in[1].Links != nil {
		t.Errorf("input b links = %v, want nil", in[1].Links)
	}
	if data.Nodes[0].Inputs[0].Links != nil || data.Nodes[0].Outputs[0].Links != nil {
		t.Error("Migrate must not modify its input")
	}

	_, report = Migrate(migrated)
	if report.Migrated() != 0 {
		t.Errorf("second migration rewrote %d records", report.Migrated())
	}
}

func TestConfigureMissingType(t *testing.T) {
	g := buildFanIn(t)
	data := g.Serialize()
	data.Nodes[1].Type = "math/unknown"

	target := New(testFactory)
	keep := add(t, target, newSource())
	err := target.Configure(data)
	if !errors.Is(err, errors.ErrCodeMissingType) {
		t.Fatalf("err = %v, want MISSING_TYPE", err)
	}
	if !strings.Contains(err.Error(), "math/unknown") {
		t.Errorf("error should name the type: %v", err)
	}
	if target.NodeCount() != 1 || target.NodeByID(keep.ID) != keep {
		t.Error("failed Configure must leave the graph untouched")
	}
}

func TestConfigureRejectsBadIDs(t *testing.T) {
	tests := []struct {
		name  string
		nodes []NodeData
	}{
		{"Zero", []NodeData{{ID: 0, Type: "test/source"}}},
		{"Duplicate", []NodeData{{ID: 1, Type: "test/source"}, {ID: 1, Type: "test/target"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(testFactory).Configure(&Data{Nodes: tt.nodes})
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("err = %v, want INVALID_FORMAT", err)
			}
		})
	}
	if err := New(testFactory).Configure(nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil data: err = %v, want INVALID_INPUT", err)
	}
}

func TestConfigureDropsDanglingLinks(t *testing.T) {
	const doc = `{
	  "last_node_id": 2, "last_link_id": 3,
	  "nodes": [
	    {"id": 1, "type": "test/source", "outputs": [{"name": "out", "type": "number", "links": [1, 2]}]},
	    {"id": 2, "type": "test/multi_target", "inputs": [{"name": "deps", "type": "number", "links": [1, 3]}]}
	  ],
	  "links": [[1, 1, 0, 2, 0, "number"], [2, 1, 0, 9, 0, "number"]],
	  "version": 0.5
	}`
	data, err := Unmarshal([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	g := New(testFactory)
	if err := g.Configure(data); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	mustValidate(t, g)
	if g.LinkCount() != 1 {
		t.Errorf("link count = %d, want 1", g.LinkCount())
	}
	if got := g.NodeByID(2).Inputs[0].Links; !slices.Equal(got, []LinkID{1}) {
		t.Errorf("input links = %v, want [1]", got)
	}
	if !g.NodeByID(2).Inputs[0].AllowMultiple {
		t.Error("declared AllowMultiple should survive loading")
	}
	if g.LastLinkID() != 3 {
		t.Errorf("LastLinkID = %d, want 3", g.LastLinkID())
	}
}

func TestConfigureTrimsOverfilledSingleInput(t *testing.T) {
	const doc = `{
	  "last_node_id": 3, "last_link_id": 2,
	  "nodes": [
	    {"id": 1, "type": "test/source", "outputs": [{"name": "out", "type": "number", "links": [1]}]},
	    {"id": 2, "type": "test/source", "outputs": [{"name": "out", "type": "number", "links": [2]}]},
	    {"id": 3, "type": "test/target", "inputs": [{"name": "in", "type": "number", "links": [1, 2]}]}
	  ],
	  "links": [[1, 1, 0, 3, 0, "number"], [2, 2, 0, 3, 0, "number"]],
	  "version": 0.5
	}`
	data, err := Unmarshal([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	g := New(testFactory)
	if err := g.Configure(data); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	mustValidate(t, g)
	if got := g.NodeByID(3).Inputs[0].Links; !slices.Equal(got, []LinkID{2}) {
		t.Errorf("input links = %v, want [2]", got)
	}
	if _, ok := g.Link(1); ok {
		t.Error("link 1 should be dropped")
	}
	if got := g.NodeByID(1).Outputs[0].Links; len(got) != 0 {
		t.Errorf("origin output links = %v, want none", got)
	}
	if got := g.NodeByID(2).Outputs[0].Links; !slices.Equal(got, []LinkID{2}) {
		t.Errorf("surviving origin links = %v, want [2]", got)
	}
}

func TestConfigureKeepsDeclaredSlots(t *testing.T) {
	data := &Data{Nodes: []NodeData{{ID: 5, Type: "test/target"}}}
	g := New(testFactory)
	if err := g.Configure(data); err != nil {
		t.Fatal(err)
	}
	n := g.NodeByID(5)
	if len(n.Inputs) != 1 || len(n.Outputs) != 1 {
		t.Errorf("slots = %d in, %d out; want constructor slots", len(n.Inputs), len(n.Outputs))
	}
	if g.LastNodeID() != 5 {
		t.Errorf("LastNodeID = %d, want 5", g.LastNodeID())
	}
}

func TestLinkUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Link
	}{
		{"Tuple", `[3, 1, 0, 2, 1, "number"]`, Link{ID: 3, OriginID: 1, TargetID: 2, TargetSlot: 1, Type: "number"}},
		{"TupleWithoutType", `[3, 1, 0, 2, 1]`, Link{ID: 3, OriginID: 1, TargetID: 2, TargetSlot: 1}},
		{"NumericType", `[3, 1, 0, 2, 1, -1]`, Link{ID: 3, OriginID: 1, TargetID: 2, TargetSlot: 1, Type: "-1"}},
		{"NullType", `[3, 1, 0, 2, 1, null]`, Link{ID: 3, OriginID: 1, TargetID: 2, TargetSlot: 1}},
		{
			"Object",
			`{"id": 3, "origin_id": 1, "origin_slot": 0, "target_id": 2, "target_slot": 1, "type": "string"}`,
			Link{ID: 3, OriginID: 1, TargetID: 2, TargetSlot: 1, Type: "string"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Link
			if err := json.Unmarshal([]byte(tt.in), &l); err != nil {
				t.Fatal(err)
			}
			if l != tt.want {
				t.Errorf("got %+v, want %+v", l, tt.want)
			}
		})
	}

	var l Link
	if err := json.Unmarshal([]byte(`[1, 2]`), &l); err == nil {
		t.Error("short tuple should fail")
	}
}

func TestLinkListKeyedObject(t *testing.T) {
	var ll LinkList
	in := `{"7": [7, 1, 0, 2, 0, "number"], "2": [2, 1, 0, 3, 0, "number"]}`
	if err := json.Unmarshal([]byte(in), &ll); err != nil {
		t.Fatal(err)
	}
	if len(ll) != 2 || ll[0].ID != 2 || ll[1].ID != 7 {
		t.Errorf("links = %+v", ll)
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := Read(strings.NewReader("{not json")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
	if _, err := ReadFile(""); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("err = %v, want INVALID_PATH", err)
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteFile(buildFanIn(t), path); err != nil {
		t.Fatal(err)
	}
	data, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Nodes) != 3 || len(data.Links) != 2 {
		t.Errorf("read %d nodes, %d links", len(data.Nodes), len(data.Links))
	}
}
