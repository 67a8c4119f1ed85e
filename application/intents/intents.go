// Package intents holds the user-level edit requests accepted by the command
// bus. Coordinates are in millimetres; ids are the string form of element ids.
package intents

import (
	"boardedit/pkg/utils"
)

// PlaceNetPoint asks for a junction at a position. Choice optionally names
// the candidate to use when several elements are hit.
type PlaceNetPoint struct {
	BoardID string  `json:"board_id" validate:"required,uuid"`
	X       float64 `json:"x" validate:"gte=-1000000,lte=1000000"`
	Y       float64 `json:"y" validate:"gte=-1000000,lte=1000000"`
	Layer   string  `json:"layer" validate:"required,layer"`
	Choice  string  `json:"choice,omitempty" validate:"omitempty,uuid"`
}

// Validate validates the intent
func (i PlaceNetPoint) Validate() error { return utils.ValidateStruct(i) }

// AddFreePoint starts a new segment with a free point
type AddFreePoint struct {
	BoardID string  `json:"board_id" validate:"required,uuid"`
	Signal  string  `json:"signal" validate:"required,max=255"`
	X       float64 `json:"x" validate:"gte=-1000000,lte=1000000"`
	Y       float64 `json:"y" validate:"gte=-1000000,lte=1000000"`
	Layer   string  `json:"layer" validate:"required,layer"`
}

// Validate validates the intent
func (i AddFreePoint) Validate() error { return utils.ValidateStruct(i) }

// CombineSegments merges a segment into the segment of a junction point
type CombineSegments struct {
	BoardID         string `json:"board_id" validate:"required,uuid"`
	RemovedSegment  string `json:"removed_segment" validate:"required,uuid"`
	JunctionPointID string `json:"junction_point" validate:"required,uuid"`
}

// Validate validates the intent
func (i CombineSegments) Validate() error { return utils.ValidateStruct(i) }

// EditSegmentSignal moves a segment to another net signal, given by name
type EditSegmentSignal struct {
	BoardID   string `json:"board_id" validate:"required,uuid"`
	SegmentID string `json:"segment_id" validate:"required,uuid"`
	Signal    string `json:"signal" validate:"required,max=255"`
}

// Validate validates the intent
func (i EditSegmentSignal) Validate() error { return utils.ValidateStruct(i) }

// CombinePoints merges one net point into another of the same segment
type CombinePoints struct {
	BoardID        string `json:"board_id" validate:"required,uuid"`
	RemovedPoint   string `json:"removed_point" validate:"required,uuid,nefield=ResultingPoint"`
	ResultingPoint string `json:"resulting_point" validate:"required,uuid"`
}

// Validate validates the intent
func (i CombinePoints) Validate() error { return utils.ValidateStruct(i) }

// DetachPoint removes a net point from its via or pad
type DetachPoint struct {
	BoardID string `json:"board_id" validate:"required,uuid"`
	PointID string `json:"point_id" validate:"required,uuid"`
}

// Validate validates the intent
func (i DetachPoint) Validate() error { return utils.ValidateStruct(i) }

// CombineAllItemsUnderPoint merges every item of the point's net signal
// lying under a net point into it
type CombineAllItemsUnderPoint struct {
	BoardID string `json:"board_id" validate:"required,uuid"`
	PointID string `json:"point_id" validate:"required,uuid"`
}

// Validate validates the intent
func (i CombineAllItemsUnderPoint) Validate() error { return utils.ValidateStruct(i) }

// BeginEdit opens an edit group: following edits of the board become one
// undo step when the group is committed
type BeginEdit struct {
	BoardID string `json:"board_id" validate:"required,uuid"`
	Text    string `json:"text" validate:"required,max=255"`
}

// Validate validates the intent
func (i BeginEdit) Validate() error { return utils.ValidateStruct(i) }

// CommitEdit closes the open edit group of a board
type CommitEdit struct {
	BoardID string `json:"board_id" validate:"required,uuid"`
}

// Validate validates the intent
func (i CommitEdit) Validate() error { return utils.ValidateStruct(i) }

// AbortEdit reverts and closes the open edit group of a board
type AbortEdit struct {
	BoardID string `json:"board_id" validate:"required,uuid"`
}

// Validate validates the intent
func (i AbortEdit) Validate() error { return utils.ValidateStruct(i) }

// Undo reverts the last edit of a board
type Undo struct {
	BoardID string `json:"board_id" validate:"required,uuid"`
}

// Validate validates the intent
func (i Undo) Validate() error { return utils.ValidateStruct(i) }

// Redo re-applies the last undone edit of a board
type Redo struct {
	BoardID string `json:"board_id" validate:"required,uuid"`
}

// Validate validates the intent
func (i Redo) Validate() error { return utils.ValidateStruct(i) }

// Result is what every intent handler returns
type Result struct {
	Changed   bool   `json:"changed"`
	Text      string `json:"text,omitempty"`
	PointID   string `json:"point_id,omitempty"`
	CanUndo   bool   `json:"can_undo"`
	CanRedo   bool   `json:"can_redo"`
	GroupOpen bool   `json:"group_open"`
}
