package machine

import (
	"github.com/fluo-state/fluo/pkg/core"
	"github.com/fluo-state/fluo/pkg/guard"
	"github.com/fluo-state/fluo/pkg/utils"
	"github.com/fluo-state/fluo/pkg/value"
)

// Transition evaluates event against state and returns the resulting
// MachineState. It is pure with respect to its inputs and return value —
// the only side effects are whatever the matched transition's and entered/
// exited nodes' actions perform against the cloned context, plus, if m has
// an attached History manager, recording any history-enabled compound that
// was exited. If no transition anywhere in the active configuration
// matches event, Transition returns state unchanged (by value-equality,
// not by pointer — a fresh MachineState sharing the old Value and Context).
func Transition[C Cloneable[C]](m *Machine[C], state MachineState[C], event core.Event) MachineState[C] {
	newVal, newCtx, changed := m.transitionAt(state.Value, state.Context, event)
	if !changed {
		return state
	}
	if m.History != nil {
		m.History.RecordExits(state.Value, newVal, state.Context)
	}
	return MachineState[C]{Value: newVal, Context: newCtx}
}

// transitionAt recursively applies the transition algorithm to val,
// dispatching on its Kind:
//
//   - Parallel: fold every region through transitionAt in order, threading
//     the (possibly updated) context from one region into the next. Changed
//     is true iff at least one region changed.
//   - Compound: try the child first; if the child changed, the parent stays
//     in place (no transitions of the parent itself are considered). If the
//     child did NOT change, fall back to the parent node's own transitions.
//   - Atomic: evaluate the owning node's own transitions directly.
func (m *Machine[C]) transitionAt(val value.StateValue, ctx C, event core.Event) (value.StateValue, C, bool) {
	switch val.Kind() {
	case value.Parallel:
		regions := val.Regions()
		newRegions := make([]value.StateValue, len(regions))
		curCtx := ctx
		changed := false
		for i, r := range regions {
			nr, nc, ch := m.transitionAt(r, curCtx, event)
			newRegions[i] = nr
			if ch {
				changed = true
				curCtx = nc
			}
		}
		if !changed {
			return val, ctx, false
		}
		return value.Par(newRegions...), curCtx, true

	case value.Compound:
		parentID := val.Name()
		child := val.Child()
		nc, ncCtx, changed := m.transitionAt(child, ctx, event)
		if changed {
			return value.Comp(parentID, nc), ncCtx, true
		}
		return m.tryNodeTransition(parentID, val, ctx, event)

	default: // Atomic
		return m.tryNodeTransition(val.Name(), val, ctx, event)
	}
}

// tryNodeTransition evaluates nodeID's own TransitionDefs, in declaration
// order, selecting the first whose Event matches and whose Guards all
// pass. On a match it clones ctx, runs the transition's actions, then
// nodeID's exit actions, resolves the target (recursing through any
// compound/parallel initial-child chain), runs the resolved target node's
// own entry actions (not the whole resolved chain's — the simplified LCA
// rule of SPEC_FULL.md §4.4/§9), and returns the resolved value. On no
// match it returns (currentVal, ctx, false).
func (m *Machine[C]) tryNodeTransition(nodeID string, currentVal value.StateValue, ctx C, event core.Event) (value.StateValue, C, bool) {
	node, ok := m.States[nodeID]
	if !ok {
		return currentVal, ctx, false
	}
	for _, t := range node.Transitions {
		if t.Event != event.Discriminant() {
			continue
		}
		if !allPass(t.Guards, ctx, event) {
			continue
		}

		ctx2 := ctx.Clone()
		for _, a := range t.Actions {
			m.reportError(nodeID, event.Name, a.Exec(ctx2, event))
		}
		for _, a := range node.ExitActions {
			m.reportError(nodeID, event.Name, a.Exec(ctx2, event))
		}

		targetID := t.Target
		resolved, overlayCtx, hasOverlay := m.resolveTarget(targetID, ctx2, event)
		if hasOverlay {
			ctx2 = overlayCtx
		}
		if targetNode, ok := m.States[targetID]; ok {
			for _, a := range targetNode.EntryActions {
				m.reportError(targetID, event.Name, a.Exec(ctx2, event))
			}
		}
		return resolved, ctx2, true
	}
	return currentVal, ctx, false
}

func allPass[C any](guards []guard.Guard[C], ctx C, event core.Event) bool {
	for _, g := range guards {
		if !g.Eval(ctx, event) {
			return false
		}
	}
	return true
}

// resolveTarget resolves targetID into its full entered value. If targetID
// names a NodeHistory pseudo-state, it delegates to m.History and may
// additionally report a context overlay to restore (when the history
// entry recorded one and the state was an attached RestoreContext
// history). Otherwise it behaves exactly like resolveEntryValue.
func (m *Machine[C]) resolveTarget(targetID string, ctx C, event core.Event) (value.StateValue, C, bool) {
	node, ok := m.States[targetID]
	if ok && node.Kind == NodeHistory {
		if m.History == nil {
			m.reportError(targetID, event.Name, &utils.RuntimeError{Kind: utils.HistoryMiss, From: targetID})
			var zero C
			return value.Atom(targetID), zero, false
		}
		resolvedVal, overlay, hasOverlay, fromDefault, err := m.History.Resolve(node.HistoryOwner)
		m.reportError(targetID, event.Name, err)
		if err != nil {
			var zero C
			return value.Atom(targetID), zero, false
		}
		if fromDefault || resolvedVal.Kind() == value.Atomic {
			return m.resolveEntryValue(resolvedVal.Name()), overlay, hasOverlay
		}
		return resolvedVal, overlay, hasOverlay
	}
	var zero C
	return m.resolveEntryValue(targetID), zero, false
}

// resolveEntryValue expands id into the value produced by entering it
// fresh: a compound recurses into its InitialChild, a parallel recurses
// into every region in ChildOrder, and anything else (including an unknown
// id — Build() should have already rejected that) is atomic.
func (m *Machine[C]) resolveEntryValue(id string) value.StateValue {
	node, ok := m.States[id]
	if !ok {
		return value.Atom(id)
	}
	switch node.Kind {
	case NodeCompound:
		return value.Comp(id, m.resolveEntryValue(node.InitialChild))
	case NodeParallel:
		regions := make([]value.StateValue, len(node.ChildOrder))
		for i, rid := range node.ChildOrder {
			regions[i] = m.resolveEntryValue(rid)
		}
		return value.Par(regions...)
	default:
		return value.Atom(id)
	}
}
