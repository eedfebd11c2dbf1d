package code

import (
	"strings"
	"testing"

	"github.com/funvibe/lix/internal/symbol"
)

func TestBuilderSlotAllocationStartsAtZero(t *testing.T) {
	b := NewBuilder()
	if s := b.ConsumeSlot(); s != 0 {
		t.Fatalf("first ConsumeSlot = %d; want 0", s)
	}
	if s := b.ConsumeSlot(); s != 1 {
		t.Fatalf("second ConsumeSlot = %d; want 1", s)
	}
}

func TestPatchJumpRewritesTarget(t *testing.T) {
	b := NewBuilder()
	off := b.Emit(Jump{Target: 0})
	b.Emit(Ret{Slot: 0})
	b.PatchJump(off, 1)

	got := b.Finish()[off].(Jump)
	if got.Target != 1 {
		t.Fatalf("patched target = %d; want 1", got.Target)
	}
}

func TestPatchJumpOnNonJumpPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic patching a non-jump instruction")
		}
	}()
	b := NewBuilder()
	off := b.Emit(Ret{Slot: 0})
	b.PatchJump(off, 0)
}

func TestDisassembleStableForEqualInstructions(t *testing.T) {
	c := Code{ConstInt{Value: 41}, Ret{Slot: 0}}
	a := Disassemble(c)
	b := Disassemble(c)
	if a != b {
		t.Fatalf("disassembly of identical code must render identically:\n%s\nvs\n%s", a, b)
	}
	if !strings.Contains(a, "$0") {
		t.Fatalf("expected a slot reference rendered as $0, got:\n%s", a)
	}
}

func TestDisassembleRendersSymbolsAndOffsets(t *testing.T) {
	mod := symbol.Intern("Kernel")
	fn := symbol.Intern("puts")
	c := Code{CallMFA{Module: mod, Fn: fn, Arg: 0}, Jump{Target: 0}}
	out := Disassemble(c)
	if !strings.Contains(out, ":Kernel") || !strings.Contains(out, ":puts") {
		t.Fatalf("expected symbol operands rendered as :name, got:\n%s", out)
	}
	if !strings.Contains(out, "%0") {
		t.Fatalf("expected a jump target rendered as %%N, got:\n%s", out)
	}
}
