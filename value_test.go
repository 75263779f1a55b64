package vyra

import "testing"

func Test_Value_Truthy(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"absent", Absent, false},
		{"bool true", BoolVal(true), true},
		{"bool false", BoolVal(false), false},
		{"int zero", IntVal(0), false},
		{"int nonzero", IntVal(5), true},
		{"float zero", FloatVal(0), false},
		{"float nonzero", FloatVal(0.1), true},
		{"empty string", StringVal(""), false},
		{"nonempty string", StringVal("x"), true},
		{"empty list", ListVal(nil), false},
		{"nonempty list", ListVal([]Value{IntVal(1)}), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Truthy(); got != c.want {
				t.Errorf("Truthy() = %v, want %v", got, c.want)
			}
		})
	}
}

func Test_Value_Equal_NumericCoercion(t *testing.T) {
	if !Equal(IntVal(5), FloatVal(5.0)) {
		t.Error("expected 5 == 5.0")
	}
	if Equal(IntVal(5), FloatVal(5.1)) {
		t.Error("expected 5 != 5.1")
	}
}

func Test_Value_Equal_Lists(t *testing.T) {
	a := ListVal([]Value{IntVal(1), StringVal("x")})
	b := ListVal([]Value{IntVal(1), StringVal("x")})
	c := ListVal([]Value{IntVal(1), StringVal("y")})
	if !Equal(a, b) {
		t.Error("expected equal lists to compare equal")
	}
	if Equal(a, c) {
		t.Error("expected differing lists to compare unequal")
	}
}

func Test_Stringify(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"bool true", BoolVal(true), "true"},
		{"bool false", BoolVal(false), "false"},
		{"absent", Absent, "none"},
		{"int", IntVal(42), "42"},
		{"float integral", FloatVal(3.0), "3.0"},
		{"float fractional", FloatVal(3.5), "3.5"},
		{"string bare", StringVal("hi"), "hi"},
		{"list of ints", ListVal([]Value{IntVal(1), IntVal(2)}), "[1, 2]"},
		{"list with string quoted", ListVal([]Value{StringVal("a"), IntVal(1)}), `["a", 1]`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Stringify(c.v); got != c.want {
				t.Errorf("Stringify() = %q, want %q", got, c.want)
			}
		})
	}
}

func Test_Value_TypeName(t *testing.T) {
	if StringVal("x").TypeName() != "text" {
		t.Error("expected text")
	}
	if IntVal(1).TypeName() != "integer" {
		t.Error("expected integer")
	}
	if ListVal(nil).TypeName() != "list" {
		t.Error("expected list")
	}
}
