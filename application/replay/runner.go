package replay

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"boardedit/application/commands/bus"
	"boardedit/application/intents"
	"boardedit/application/queries"
	querybus "boardedit/application/queries/bus"
	pkgerrors "boardedit/pkg/errors"
)

// Outcome is what one step did
type Outcome struct {
	Step    int
	Op      string
	Result  *intents.Result
	Err     error
	Expects string
}

// Report is the result of a whole script
type Report struct {
	Outcomes []Outcome
	Board    *queries.BoardView
}

// Runner sends the steps of a script to the command bus, one after
// another, against a single board
type Runner struct {
	commands *bus.CommandBus
	queries  *querybus.QueryBus
	boardID  string
	out      io.Writer
	names    map[string]string
}

// NewRunner creates a runner. Progress is written to out when it is not nil.
func NewRunner(commands *bus.CommandBus, queries *querybus.QueryBus, boardID string, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		commands: commands,
		queries:  queries,
		boardID:  boardID,
		out:      out,
		names:    make(map[string]string),
	}
}

// Run applies the script. It stops at the first step that fails without
// expecting to, or that was expected to fail and did not.
func (r *Runner) Run(ctx context.Context, s *Script) (*Report, error) {
	report := &Report{}
	for i, step := range s.Steps {
		n := i + 1
		result, err := r.apply(ctx, step)
		report.Outcomes = append(report.Outcomes, Outcome{Step: n, Op: step.Op, Result: result, Err: err, Expects: step.Expect})
		r.print(n, step, result, err)

		if step.Expect != "" {
			if err == nil {
				return report, fmt.Errorf("step %d (%s): expected %s, got success", n, step.Op, step.Expect)
			}
			if !matches(err, step.Expect) {
				return report, fmt.Errorf("step %d (%s): expected %s: %w", n, step.Op, step.Expect, err)
			}
			continue
		}
		if err != nil {
			return report, fmt.Errorf("step %d (%s): %w", n, step.Op, err)
		}

		if step.As != "" {
			if result.PointID == "" {
				return report, fmt.Errorf("step %d (%s): no net point to name %q", n, step.Op, step.As)
			}
			r.names[step.As] = result.PointID
		}
	}

	view, err := r.board(ctx)
	if err != nil {
		return report, err
	}
	report.Board = view
	return report, nil
}

func (r *Runner) apply(ctx context.Context, step Step) (*intents.Result, error) {
	var cmd bus.Command
	switch step.Op {
	case OpPlace:
		in := intents.PlaceNetPoint{BoardID: r.boardID, X: step.X, Y: step.Y, Layer: step.Layer}
		if step.Choice != "" {
			choice, err := r.resolve(step.Choice)
			if err != nil {
				return nil, err
			}
			in.Choice = choice
		}
		cmd = in

	case OpAddFreePoint:
		cmd = intents.AddFreePoint{BoardID: r.boardID, Signal: step.Signal, X: step.X, Y: step.Y, Layer: step.Layer}

	case OpCombineSegments:
		from, err := r.resolve(step.From)
		if err != nil {
			return nil, err
		}
		junction, err := r.resolve(step.To)
		if err != nil {
			return nil, err
		}
		seg, err := r.segmentOf(ctx, from)
		if err != nil {
			return nil, err
		}
		cmd = intents.CombineSegments{BoardID: r.boardID, RemovedSegment: seg, JunctionPointID: junction}

	case OpCombinePoints:
		from, err := r.resolve(step.From)
		if err != nil {
			return nil, err
		}
		to, err := r.resolve(step.To)
		if err != nil {
			return nil, err
		}
		cmd = intents.CombinePoints{BoardID: r.boardID, RemovedPoint: from, ResultingPoint: to}

	case OpDetach:
		point, err := r.resolve(step.Point)
		if err != nil {
			return nil, err
		}
		cmd = intents.DetachPoint{BoardID: r.boardID, PointID: point}

	case OpEditSignal:
		point, err := r.resolve(step.Point)
		if err != nil {
			return nil, err
		}
		seg, err := r.segmentOf(ctx, point)
		if err != nil {
			return nil, err
		}
		cmd = intents.EditSegmentSignal{BoardID: r.boardID, SegmentID: seg, Signal: step.Signal}

	case OpCombineAll:
		point, err := r.resolve(step.Point)
		if err != nil {
			return nil, err
		}
		cmd = intents.CombineAllItemsUnderPoint{BoardID: r.boardID, PointID: point}

	case OpBegin:
		cmd = intents.BeginEdit{BoardID: r.boardID, Text: step.Text}

	case OpCommit:
		cmd = intents.CommitEdit{BoardID: r.boardID}

	case OpAbort:
		cmd = intents.AbortEdit{BoardID: r.boardID}

	case OpUndo:
		cmd = intents.Undo{BoardID: r.boardID}

	case OpRedo:
		cmd = intents.Redo{BoardID: r.boardID}

	default:
		return nil, pkgerrors.NewValidationError("unknown op " + step.Op)
	}

	res, err := r.commands.Send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	result, ok := res.(*intents.Result)
	if !ok {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("unexpected result %T", res))
	}
	return result, nil
}

// resolve turns a $name into the point id it was bound to. Anything else is
// taken as a literal id.
func (r *Runner) resolve(v string) (string, error) {
	if !isRef(v) {
		return v, nil
	}
	id, ok := r.names[strings.TrimPrefix(v, "$")]
	if !ok {
		return "", pkgerrors.NewValidationError("unbound reference " + v)
	}
	return id, nil
}

func (r *Runner) segmentOf(ctx context.Context, point string) (string, error) {
	view, err := r.board(ctx)
	if err != nil {
		return "", err
	}
	for _, seg := range view.Segments {
		for _, p := range seg.Points {
			if p.ID == point {
				return seg.ID, nil
			}
		}
	}
	return "", pkgerrors.NewNotFoundError("net point " + point)
}

func (r *Runner) board(ctx context.Context) (*queries.BoardView, error) {
	res, err := r.queries.Ask(ctx, queries.GetBoardQuery{BoardID: r.boardID})
	if err != nil {
		return nil, err
	}
	view, ok := res.(*queries.BoardView)
	if !ok {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("unexpected result %T", res))
	}
	return view, nil
}

func (r *Runner) print(n int, step Step, result *intents.Result, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(r.out, "%3d. %-17s failed     %v\n", n, step.Op, err)
	case result.Changed:
		fmt.Fprintf(r.out, "%3d. %-17s changed    %s%s\n", n, step.Op, result.Text, pointSuffix(result))
	default:
		fmt.Fprintf(r.out, "%3d. %-17s unchanged  %s%s\n", n, step.Op, result.Text, pointSuffix(result))
	}
}

func pointSuffix(result *intents.Result) string {
	if result.PointID == "" {
		return ""
	}
	return " point=" + result.PointID
}

func matches(err error, expect string) bool {
	appErr := pkgerrors.GetAppError(err)
	if appErr == nil {
		return false
	}
	want := strings.ToUpper(strings.ReplaceAll(expect, "-", "_"))
	return string(appErr.Type) == want
}

// WriteSummary prints a board view: its signals and, per segment, the
// number of points and lines
func WriteSummary(w io.Writer, view *queries.BoardView) {
	names := make(map[string]string, len(view.Signals))
	signals := make([]string, 0, len(view.Signals))
	for _, s := range view.Signals {
		names[s.ID] = s.Name
		signals = append(signals, s.Name)
	}
	sort.Strings(signals)

	fmt.Fprintf(w, "board %s (%s) version %d\n", view.Name, view.ID, view.Version)
	fmt.Fprintf(w, "signals: %s\n", strings.Join(signals, ", "))
	fmt.Fprintf(w, "vias: %d, pads: %d, segments: %d\n", len(view.Vias), len(view.Pads), len(view.Segments))

	segments := append([]queries.SegmentView(nil), view.Segments...)
	sort.Slice(segments, func(i, j int) bool {
		si, sj := names[segments[i].Signal], names[segments[j].Signal]
		if si != sj {
			return si < sj
		}
		return segments[i].ID < segments[j].ID
	})
	for _, seg := range segments {
		signal := names[seg.Signal]
		if signal == "" {
			signal = "(no signal)"
		}
		fmt.Fprintf(w, "  %-12s %s  points=%d lines=%d\n", signal, seg.ID, len(seg.Points), len(seg.Lines))
	}
}
