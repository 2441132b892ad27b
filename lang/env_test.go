package lang

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnv_Nil(t *testing.T) {
	var env *Env

	if _, ok := env.Lookup("x"); ok {
		t.Error("empty environment resolved x")
	}

	if env.Len() != 0 {
		t.Errorf("Len() = %d, want 0", env.Len())
	}

	if got := env.Names(); len(got) != 0 {
		t.Errorf("Names() = %v, want none", got)
	}
}

func TestEnv_BindDoesNotMutateParent(t *testing.T) {
	base := NewEnv(Binding{Name: "x", Value: IntValue(1)})

	left := base.Bind("y", StringValue("left"))
	right := base.Bind("x", IntValue(2))

	if _, ok := base.Lookup("y"); ok {
		t.Error("parent sees child binding")
	}

	if v, _ := base.Lookup("x"); !v.Equal(IntValue(1)) {
		t.Errorf("parent x = %s, want 1", v)
	}

	if _, ok := right.Lookup("y"); ok {
		t.Error("sibling sees binding")
	}

	if v, _ := left.Lookup("x"); !v.Equal(IntValue(1)) {
		t.Errorf("left x = %s, want 1", v)
	}

	if v, _ := right.Lookup("x"); !v.Equal(IntValue(2)) {
		t.Errorf("right x = %s, want 2", v)
	}
}

func TestEnv_Shadowing(t *testing.T) {
	env := NewEnv(
		Binding{Name: "b", Value: IntValue(1)},
		Binding{Name: "a", Value: IntValue(2)},
		Binding{Name: "b", Value: IntValue(3)},
	)

	if env.Len() != 3 {
		t.Errorf("Len() = %d, want 3", env.Len())
	}

	if diff := cmp.Diff([]string{"a", "b"}, env.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	want := map[string]Value{"a": IntValue(2), "b": IntValue(3)}
	if diff := cmp.Diff(want, env.Map()); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}

	var order []string
	for name := range env.All() {
		order = append(order, name)
	}

	if diff := cmp.Diff([]string{"b", "a"}, order); diff != "" {
		t.Errorf("All() order mismatch (-want +got):\n%s", diff)
	}
}
