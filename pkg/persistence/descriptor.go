package persistence

import (
	"sort"

	"github.com/fluo-state/fluo/pkg/machine"
)

// StateDescriptor is the structural, re-attachable-behavior-free
// description of one StateNode: everything needed to reconstruct the
// node's shape with a Builder, plus human-readable descriptions of the
// entry/exit actions it carries (their executable bodies are never
// serialized — see DescribeMachine).
type StateDescriptor struct {
	ID                      string   `json:"id" yaml:"id"`
	Kind                    string   `json:"kind" yaml:"kind"`
	ChildIDs                []string `json:"child_ids,omitempty" yaml:"child_ids,omitempty"`
	InitialChild            string   `json:"initial_child,omitempty" yaml:"initial_child,omitempty"`
	EntryActionDescriptions []string `json:"entry_action_descriptions,omitempty" yaml:"entry_action_descriptions,omitempty"`
	ExitActionDescriptions  []string `json:"exit_action_descriptions,omitempty" yaml:"exit_action_descriptions,omitempty"`
}

// TransitionDescriptor is the structural description of one outgoing
// edge: its guard/action descriptions, not their executable bodies.
type TransitionDescriptor struct {
	Event              string   `json:"event" yaml:"event"`
	Source             string   `json:"source" yaml:"source"`
	Target             string   `json:"target" yaml:"target"`
	GuardDescriptions  []string `json:"guard_descriptions,omitempty" yaml:"guard_descriptions,omitempty"`
	ActionDescriptions []string `json:"action_descriptions,omitempty" yaml:"action_descriptions,omitempty"`
}

// Stats summarizes a MachineDescriptor's graph size.
type Stats struct {
	StateCount      int `json:"state_count" yaml:"state_count"`
	TransitionCount int `json:"transition_count" yaml:"transition_count"`
}

// Metadata is the free-form, caller-supplied descriptive envelope
// attached to a MachineDescriptor. Every field is optional; Stats is
// always filled in by DescribeMachine regardless of what the caller
// passes.
type Metadata struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string            `json:"version,omitempty" yaml:"version,omitempty"`
	CreatedAt   int64             `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   int64             `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Author      string            `json:"author,omitempty" yaml:"author,omitempty"`
	Tags        []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Properties  map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
	Stats       Stats             `json:"stats" yaml:"stats"`
}

// MachineDescriptor is the full structural snapshot of a Machine plus
// one MachineState, matching the versioned record schema: an id,
// initial/current state, every state and transition (behavior
// described, not serialized) and metadata. The context payload is not part
// of the descriptor; it travels beside it in Record.Context.
//
// Guards and actions persist by description only: behavioral round-trip
// after a load requires re-attaching the same Builder calls under the
// same identifiers, not replaying this descriptor.
type MachineDescriptor struct {
	Version      uint32                 `json:"version" yaml:"version"`
	ID           string                 `json:"id" yaml:"id"`
	InitialState string                 `json:"initial_state" yaml:"initial_state"`
	CurrentState string                 `json:"current_state" yaml:"current_state"`
	States       []StateDescriptor      `json:"states" yaml:"states"`
	Transitions  []TransitionDescriptor `json:"transitions" yaml:"transitions"`
	Metadata     Metadata               `json:"metadata" yaml:"metadata"`
}

var nodeKindNames = map[machine.NodeKind]string{
	machine.NodeAtomic:   "atomic",
	machine.NodeCompound: "compound",
	machine.NodeParallel: "parallel",
	machine.NodeHistory:  "history",
}

// DescribeMachine snapshots m's graph and state's active value/context
// into a MachineDescriptor, sorted by state id and then by transition
// declaration order for deterministic output. meta is merged in as-is
// except for Stats, which DescribeMachine always computes itself.
func DescribeMachine[C machine.Cloneable[C]](id string, m *machine.Machine[C], state machine.MachineState[C], meta Metadata) MachineDescriptor {
	ids := make([]string, 0, len(m.States))
	for sid := range m.States {
		ids = append(ids, sid)
	}
	sort.Strings(ids)

	states := make([]StateDescriptor, 0, len(ids))
	var transitions []TransitionDescriptor
	for _, sid := range ids {
		n := m.States[sid]
		sd := StateDescriptor{
			ID:           n.ID,
			Kind:         nodeKindNames[n.Kind],
			ChildIDs:     append([]string(nil), n.ChildOrder...),
			InitialChild: n.InitialChild,
		}
		for _, a := range n.EntryActions {
			sd.EntryActionDescriptions = append(sd.EntryActionDescriptions, a.Describe())
		}
		for _, a := range n.ExitActions {
			sd.ExitActionDescriptions = append(sd.ExitActionDescriptions, a.Describe())
		}
		states = append(states, sd)

		for _, t := range n.Transitions {
			td := TransitionDescriptor{Event: t.Event, Source: sid, Target: t.Target}
			for _, g := range t.Guards {
				td.GuardDescriptions = append(td.GuardDescriptions, g.Describe())
			}
			for _, a := range t.Actions {
				td.ActionDescriptions = append(td.ActionDescriptions, a.Describe())
			}
			transitions = append(transitions, td)
		}
	}

	meta.Stats = Stats{StateCount: len(states), TransitionCount: len(transitions)}

	return MachineDescriptor{
		Version:      SchemaVersion,
		ID:           id,
		InitialState: m.RootID,
		CurrentState: state.Value.String(),
		States:       states,
		Transitions:  transitions,
		Metadata:     meta,
	}
}
