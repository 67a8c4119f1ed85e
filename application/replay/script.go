// Package replay applies scripted edits to a board through the command bus.
//
// A script is a YAML list of steps. Steps that create or find a net point
// can name it with "as"; later steps refer to it as "$name". Coordinates
// are in millimetres.
//
//	steps:
//	  - {op: place, x: 10, y: 0, layer: top_cu, as: via}
//	  - {op: add-free-point, signal: GND, x: 30, y: 0, layer: top_cu, as: lone}
//	  - {op: combine-segments, from: $lone, to: $via}
//	  - {op: place, x: 20, y: 10, layer: top_cu, expect: UNCONNECTED_ANCHOR}
//	  - {op: begin, text: join ground}
//	  - {op: combine-all, point: $via}
//	  - {op: commit}
//	  - {op: undo}
package replay

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	pkgerrors "boardedit/pkg/errors"
)

// Step operations
const (
	OpPlace           = "place"
	OpAddFreePoint    = "add-free-point"
	OpCombineSegments = "combine-segments"
	OpCombinePoints   = "combine-points"
	OpDetach          = "detach"
	OpEditSignal      = "edit-signal"
	OpCombineAll      = "combine-all"
	OpBegin           = "begin"
	OpCommit          = "commit"
	OpAbort           = "abort"
	OpUndo            = "undo"
	OpRedo            = "redo"
)

// Script is a sequence of edits
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one edit. Which fields apply depends on Op:
//
//	place             x, y, layer, choice
//	add-free-point    signal, x, y, layer
//	combine-segments  from (a point of the removed segment), to (the junction)
//	combine-points    from (removed), to (resulting)
//	detach            point
//	edit-signal       point (any point of the segment), signal
//	combine-all       point
//	begin             text (the undo text of the group)
//
// Steps between begin and commit become one undo step. Abort reverts them.
//
// Expect names the error type the step must fail with.
type Step struct {
	Op     string  `yaml:"op"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Layer  string  `yaml:"layer"`
	Signal string  `yaml:"signal"`
	Choice string  `yaml:"choice"`
	Point  string  `yaml:"point"`
	Text   string  `yaml:"text"`
	From   string  `yaml:"from"`
	To     string  `yaml:"to"`
	As     string  `yaml:"as"`
	Expect string  `yaml:"expect"`
}

// Parse decodes and checks a script
func Parse(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, pkgerrors.NewValidationError("invalid script: " + err.Error())
	}
	for i, step := range s.Steps {
		if err := step.check(); err != nil {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("step %d: %s", i+1, err))
		}
	}
	return &s, nil
}

// ParseFile decodes a script file
func ParseFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "opening script %s", path)
	}
	defer f.Close()
	return Parse(f)
}

func (s Step) check() error {
	need := func(fields ...string) error {
		values := map[string]string{
			"layer":  s.Layer,
			"signal": s.Signal,
			"point":  s.Point,
			"from":   s.From,
			"to":     s.To,
			"text":   s.Text,
		}
		for _, f := range fields {
			if values[f] == "" {
				return fmt.Errorf("%s needs %s", s.Op, f)
			}
		}
		return nil
	}

	switch s.Op {
	case OpPlace:
		return need("layer")
	case OpAddFreePoint:
		return need("signal", "layer")
	case OpCombineSegments, OpCombinePoints:
		return need("from", "to")
	case OpDetach, OpCombineAll:
		return need("point")
	case OpBegin:
		return need("text")
	case OpEditSignal:
		return need("point", "signal")
	case OpUndo, OpRedo, OpCommit, OpAbort:
		return nil
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
}

// isRef reports whether v names an earlier step's point
func isRef(v string) bool {
	return strings.HasPrefix(v, "$")
}
