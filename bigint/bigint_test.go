package bigint

import "testing"

func TestAddOverflowsToBig(t *testing.T) {
	a := FromInt64(SmallMax)
	b := FromInt64(1)
	sum := Add(a, b)

	if sum.IsSmall() {
		t.Fatalf("expected SmallMax+1 to promote to big representation")
	}
	if CmpInt64(sum, SmallMax) <= 0 {
		t.Fatalf("expected sum to compare greater than SmallMax")
	}

}

func TestNegationOfSmallMinStaysSmall(t *testing.T) {
	min := FromInt64(SmallMin)
	if !min.IsSmall() {
		t.Fatalf("SmallMin must be small")
	}
	neg := Neg(min)
	if !neg.IsSmall() {
		t.Fatalf("negation of SmallMin must still be small by construction of the range")
	}
	if CmpInt64(neg, SmallMax) != 0 {
		t.Fatalf("expected -SmallMin == SmallMax, got %s", neg.String())
	}
}

func TestCmpThreeWay(t *testing.T) {
	pairs := []struct{ x, y int64 }{
		{1, 2}, {2, 1}, {5, 5}, {-3, 3}, {SmallMax, SmallMax},
	}
	for _, p := range pairs {
		x, y := FromInt64(p.x), FromInt64(p.y)
		c1 := Cmp(x, y)
		c2 := Cmp(y, x)
		if c1 != -c2 {
			t.Fatalf("cmp(%d,%d)=%d, cmp(%d,%d)=%d: not antisymmetric", p.x, p.y, c1, p.y, p.x, c2)
		}
		count := 0
		if c1 < 0 {
			count++
		}
		if c1 == 0 {
			count++
		}
		if c1 > 0 {
			count++
		}
		if count != 1 {
			t.Fatalf("cmp(%d,%d) must satisfy exactly one of <,=,>", p.x, p.y)
		}
	}
}

func TestMulOverflowsToBig(t *testing.T) {
	a := FromInt64(SmallMax)
	b := FromInt64(2)
	product := Mul(a, b)
	if product.IsSmall() {
		t.Fatalf("expected SmallMax*2 to promote to big")
	}
}

func TestFromBytesRoundTrip(t *testing.T) {
	// 0x0100 little-endian magnitude = 256, negated.
	v := FromBytes([]byte{0x00, 0x01}, true)
	if CmpInt64(v, -256) != 0 {
		t.Fatalf("expected -256, got %s", v.String())
	}
}

func TestStringDecimal(t *testing.T) {
	v := FromInt64(42)
	if v.String() != "42" {
		t.Fatalf("expected \"42\", got %q", v.String())
	}
}
