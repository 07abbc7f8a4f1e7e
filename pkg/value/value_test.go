package value_test

import (
	"testing"

	"github.com/fluo-state/fluo/pkg/value"
)

func TestAtomMatch(t *testing.T) {
	v := value.Atom("red")
	if !v.Match("red") {
		t.Fatal("expected atomic match")
	}
	if v.Match("green") {
		t.Fatal("unexpected atomic match")
	}
	if !v.Match("*") {
		t.Fatal("wildcard should always match")
	}
}

func TestCompoundMatch(t *testing.T) {
	v := value.Comp("power", value.Atom("on"))
	if !v.Match("power") {
		t.Fatal("expected parent match")
	}
	if !v.Match("power.on") {
		t.Fatal("expected dotted match")
	}
	if !v.Match("on") {
		t.Fatal("expected recursive child match")
	}
	if v.Match("off") {
		t.Fatal("unexpected match")
	}
}

func TestParallelMatchAndLeaves(t *testing.T) {
	v := value.Par(value.Atom("heating"), value.Atom("cooling"))
	if !v.Match("cooling") {
		t.Fatal("expected region match")
	}
	leaves := v.Leaves()
	if len(leaves) != 2 || leaves[0] != "heating" || leaves[1] != "cooling" {
		t.Fatalf("unexpected leaves: %v", leaves)
	}
	if v.String() != "[heating, cooling]" {
		t.Fatalf("unexpected string: %s", v.String())
	}
}

func TestCompoundLeavesAndString(t *testing.T) {
	v := value.Comp("power", value.Atom("on"))
	leaves := v.Leaves()
	if len(leaves) != 1 || leaves[0] != "power.on" {
		t.Fatalf("unexpected leaves: %v", leaves)
	}
	if v.String() != "power.on" {
		t.Fatalf("unexpected string: %s", v.String())
	}
}

func TestWithRegionPreservesOrder(t *testing.T) {
	v := value.Par(value.Atom("heating"), value.Atom("cooling"))
	updated := v.WithRegion(0, value.Atom("idle"))
	leaves := updated.Leaves()
	if leaves[0] != "idle" || leaves[1] != "cooling" {
		t.Fatalf("unexpected leaves after WithRegion: %v", leaves)
	}
	// original is untouched
	if v.Leaves()[0] != "heating" {
		t.Fatal("WithRegion must not mutate the receiver")
	}
}

func TestEqual(t *testing.T) {
	a := value.Par(value.Atom("heating"), value.Comp("power", value.Atom("on")))
	b := value.Par(value.Atom("heating"), value.Comp("power", value.Atom("on")))
	c := value.Par(value.Comp("power", value.Atom("on")), value.Atom("heating"))
	if !a.Equal(b) {
		t.Fatal("expected equal")
	}
	if a.Equal(c) {
		t.Fatal("order matters for parallel equality")
	}
}
