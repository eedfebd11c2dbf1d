package module

import (
	"errors"
	"testing"

	"github.com/funvibe/lix/internal/value"
)

func TestRegisterAndLookupFunction(t *testing.T) {
	ctx := NewContext()
	m := NewModule("Kernel")
	m.AddFunction("id", value.FunctionVal(&value.Function{Name: "id"}))
	ctx.RegisterModule(m)

	got, err := ctx.LookupFunction("Kernel", "id")
	if err != nil {
		t.Fatalf("LookupFunction: %v", err)
	}
	if got.Function().Name != "id" {
		t.Fatalf("got function named %q; want id", got.Function().Name)
	}
}

func TestLookupFunctionUnknownModule(t *testing.T) {
	ctx := NewContext()
	if _, err := ctx.LookupFunction("Nope", "f"); !errors.Is(err, ErrBadArg) {
		t.Fatalf("expected ErrBadArg, got %v", err)
	}
}

func TestLookupFunctionUnknownFunction(t *testing.T) {
	ctx := NewContext()
	ctx.RegisterModule(NewModule("Kernel"))
	if _, err := ctx.LookupFunction("Kernel", "nope"); !errors.Is(err, ErrBadArg) {
		t.Fatalf("expected ErrBadArg, got %v", err)
	}
}

func TestEnvironmentStackScoping(t *testing.T) {
	ctx := NewContext()
	ctx.PushEnv()
	ctx.SetEnv("mod", value.Str("M"))
	ctx.PushEnv()
	ctx.SetEnv("fn", value.Str("g"))

	if v, ok := ctx.GetEnv("mod"); !ok || v.StringVal() != "M" {
		t.Fatalf("expected outer env value visible from inner scope")
	}
	ctx.PopEnv()
	if _, ok := ctx.GetEnv("fn"); ok {
		t.Fatalf("expected inner env value to be gone after PopEnv")
	}
	if v, ok := ctx.GetEnv("mod"); !ok || v.StringVal() != "M" {
		t.Fatalf("expected outer env value to survive PopEnv of inner scope")
	}
}
