package graph

import "slices"

// MigrationReport describes what [Migrate] rewrote.
type MigrationReport struct {
	FromVersion  float64
	LegacyInputs int // inputs whose singular link became a links array
	NullOutputs  int // outputs whose null links became empty
}

// Migrated returns the number of rewritten slot records.
func (r MigrationReport) Migrated() int { return r.LegacyInputs + r.NullOutputs }

// Migrate returns a copy of data normalized to [CurrentVersion]:
//   - an input carrying the legacy "link" field gets a one-element links
//     array holding that id; a null legacy link leaves links nil
//   - an output with null links gets an empty array
//
// The input is not modified. Data already in the current shape passes
// through with an empty report.
func Migrate(data *Data) (*Data, MigrationReport) {
	report := MigrationReport{FromVersion: data.Version}
	out := *data
	out.Nodes = make([]NodeData, len(data.Nodes))
	for i, nd := range data.Nodes {
		if nd.Inputs != nil {
			inputs := make([]InputData, len(nd.Inputs))
			for j, in := range nd.Inputs {
				if in.Link != nil {
					if in.Links == nil {
						in.Links = []LinkID{*in.Link}
					}
					in.Link = nil
					report.LegacyInputs++
				}
				in.Links = slices.Clone(in.Links)
				inputs[j] = in
			}
			nd.Inputs = inputs
		}
		if nd.Outputs != nil {
			outputs := make([]OutputData, len(nd.Outputs))
			for j, o := range nd.Outputs {
				if o.Links == nil {
					o.Links = []LinkID{}
					report.NullOutputs++
				} else {
					o.Links = slices.Clone(o.Links)
				}
				outputs[j] = o
			}
			nd.Outputs = outputs
		}
		out.Nodes[i] = nd
	}
	out.Links = slices.Clone(data.Links)
	out.Version = CurrentVersion
	return &out, report
}
