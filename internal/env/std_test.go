package env

import "testing"

func TestStd(t *testing.T) {
	s := Std()

	t.Run("CoreControlFlowPrimitivesExist", func(t *testing.T) {
		for _, name := range []string{
			"return", "yield", "goto", "goto_far",
			"goto_conditional", "goto_conditional_far", "goto_conditional_not",
			"callasm", "callasm_far",
		} {
			if _, ok := s.Lookup(name); !ok {
				t.Errorf("expected std to define %q", name)
			}
		}
	})

	t.Run("EveryWidthOpHasBothForms", func(t *testing.T) {
		for _, suf := range []string{"", "16", "24", "32"} {
			for _, op := range []string{"add", "sub", "mul", "div", "equ", "not", "lt", "lte", "gt", "gte", "band", "bor", "and", "or"} {
				if _, ok := s.Lookup(op + suf); !ok {
					t.Errorf("missing %s%s", op, suf)
				}
				if _, ok := s.Lookup(op + suf + "_const"); !ok {
					t.Errorf("missing %s%s_const", op, suf)
				}
			}
		}
	})

	t.Run("CopyLoadStoreExistPerWidth", func(t *testing.T) {
		for _, suf := range []string{"", "16", "24", "32"} {
			for _, base := range []string{"copy", "load", "store"} {
				if _, ok := s.Lookup(base + suf); !ok {
					t.Errorf("missing %s%s", base, suf)
				}
				if _, ok := s.Lookup(base + suf + "_const"); !ok {
					t.Errorf("missing %s%s_const", base, suf)
				}
			}
		}
	})

	t.Run("CastsCoverEveryOrderedPairOfDistinctWidths", func(t *testing.T) {
		bits := map[int]string{1: "8", 2: "16", 3: "24", 4: "32"}
		for a := 1; a <= 4; a++ {
			for c := 1; c <= 4; c++ {
				name := "cast_" + bits[a] + "to" + bits[c]
				_, ok := s.Lookup(name)
				if a == c && ok {
					t.Errorf("same-width cast %q should not exist", name)
				}
				if a != c && !ok {
					t.Errorf("missing cast %q", name)
				}
			}
		}
	})

	t.Run("BytecodesAreMonotonicFromZero", func(t *testing.T) {
		ret, _ := s.Lookup("return")
		yld, _ := s.Lookup("yield")
		if ret.Bytecode != 0 {
			t.Errorf("expected return's bytecode to be 0, got %d", ret.Bytecode)
		}
		if yld.Bytecode != 1 {
			t.Errorf("expected yield's bytecode to be 1, got %d", yld.Bytecode)
		}
	})

	t.Run("EnvironmentMetadata", func(t *testing.T) {
		if s.Section != "none" {
			t.Errorf("expected section \"none\", got %q", s.Section)
		}
		if s.Terminator >= 0 {
			t.Errorf("expected a negative (disabled) terminator, got %d", s.Terminator)
		}
		if s.Pool != 256 {
			t.Errorf("expected pool size 256, got %d", s.Pool)
		}
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Resolve("std"); !ok {
		t.Fatalf("expected std to be preloaded")
	}
	custom := &Environment{Name: "custom", Pool: 16}
	r.Register(custom)
	got, ok := r.Resolve("custom")
	if !ok || got != custom {
		t.Errorf("expected Register to make custom resolvable")
	}
}
