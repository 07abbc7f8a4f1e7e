package machine

import (
	"github.com/fluo-state/fluo/pkg/action"
	"github.com/fluo-state/fluo/pkg/guard"
	"github.com/fluo-state/fluo/pkg/history"
	"github.com/fluo-state/fluo/pkg/utils"
)

// Builder assembles a Machine fluently, mirroring the shape of
// anggasct/fluo's pkg/builders.StateMachineBuilder but targeting the
// StateNode/Machine graph instead of a mutable StateMachine instance.
type Builder[C Cloneable[C]] struct {
	states map[string]*StateNode[C]
	order  []string
	rootID string
	hist   *history.Manager[C]
}

// NewBuilder starts a Builder with no states.
func NewBuilder[C Cloneable[C]]() *Builder[C] {
	return &Builder[C]{states: make(map[string]*StateNode[C])}
}

// Atomic declares a leaf state.
func (b *Builder[C]) Atomic(id string) *Builder[C] {
	return b.node(id, NodeAtomic)
}

// Compound declares a compound state with the given initial child. The
// child ids are expected to be added separately (via Atomic/Compound/
// Parallel) and related to their parent with Child.
func (b *Builder[C]) Compound(id, initialChild string) *Builder[C] {
	n := b.node(id, NodeCompound)
	n.InitialChild = initialChild
	return b
}

// Parallel declares a parallel state whose regions are entered in the
// given order.
func (b *Builder[C]) Parallel(id string, regionIDs ...string) *Builder[C] {
	n := b.node(id, NodeParallel)
	n.ChildOrder = append([]string(nil), regionIDs...)
	return b
}

// Child appends id to parentID's ChildOrder (nothing happens if parentID
// has not been declared yet). On a parallel node this adds a region that is
// entered alongside the others; on a compound node it only records
// declaration order, since InitialChild picks the active child.
func (b *Builder[C]) Child(parentID, id string) *Builder[C] {
	if n, ok := b.states[parentID]; ok {
		n.ChildOrder = append(n.ChildOrder, id)
	}
	return b
}

// History declares id as a history pseudo-state attached to ownerCompound.
func (b *Builder[C]) History(id, ownerCompound string, def history.Def) *Builder[C] {
	n := b.node(id, NodeHistory)
	n.History = &def
	n.HistoryOwner = ownerCompound
	if b.hist == nil {
		b.hist = history.NewManager[C]()
	}
	b.hist.Register(ownerCompound, def)
	return b
}

// On adds a transition from stateID to target on event, gated by guards
// (possibly none) and running actions (possibly none) in order.
func (b *Builder[C]) On(stateID, event, target string, guards []guard.Guard[C], actions []action.Action[C]) *Builder[C] {
	if n, ok := b.states[stateID]; ok {
		n.Transitions = append(n.Transitions, TransitionDef[C]{
			Event: event, Target: target, Guards: guards, Actions: actions,
		})
	}
	return b
}

// Entry appends an entry action to stateID.
func (b *Builder[C]) Entry(stateID string, a action.Action[C]) *Builder[C] {
	if n, ok := b.states[stateID]; ok {
		n.EntryActions = append(n.EntryActions, a)
	}
	return b
}

// Exit appends an exit action to stateID.
func (b *Builder[C]) Exit(stateID string, a action.Action[C]) *Builder[C] {
	if n, ok := b.states[stateID]; ok {
		n.ExitActions = append(n.ExitActions, a)
	}
	return b
}

// Initial sets the machine's root state id.
func (b *Builder[C]) Initial(id string) *Builder[C] {
	b.rootID = id
	return b
}

func (b *Builder[C]) node(id string, kind NodeKind) *Builder[C] {
	n := &StateNode[C]{ID: id, Kind: kind}
	b.states[id] = n
	b.order = append(b.order, id)
	return b
}

// Build validates the declared graph and returns the finished Machine, or
// the first BuildError encountered. Checks run in this order: duplicate
// identifiers, initial state set and declared, then per node: every
// compound has an initial child that exists, every parallel region exists,
// every transition target exists.
func (b *Builder[C]) Build() (*Machine[C], error) {
	if dup, found := utils.DuplicateIDs(b.order); found {
		return nil, &utils.BuildError{Kind: utils.DuplicateIdentifier, Subject: dup}
	}
	if b.rootID == "" {
		return nil, &utils.BuildError{Kind: utils.InitialStateMissing}
	}
	if _, ok := b.states[b.rootID]; !ok {
		return nil, &utils.BuildError{Kind: utils.StateNotFound, Subject: b.rootID}
	}
	for id, n := range b.states {
		if n.Kind == NodeCompound {
			if n.InitialChild == "" {
				return nil, &utils.BuildError{Kind: utils.CompoundNoInitial, Subject: id}
			}
			if _, ok := b.states[n.InitialChild]; !ok {
				return nil, &utils.BuildError{Kind: utils.StateNotFound, Subject: n.InitialChild}
			}
		}
		if n.Kind == NodeParallel {
			for _, rid := range n.ChildOrder {
				if _, ok := b.states[rid]; !ok {
					return nil, &utils.BuildError{Kind: utils.StateNotFound, Subject: rid}
				}
			}
		}
		for _, t := range n.Transitions {
			if _, ok := b.states[t.Target]; !ok {
				return nil, &utils.BuildError{Kind: utils.TransitionTargetMiss, Subject: id, Detail: t.Target}
			}
		}
	}
	return &Machine[C]{States: b.states, RootID: b.rootID, History: b.hist}, nil
}
