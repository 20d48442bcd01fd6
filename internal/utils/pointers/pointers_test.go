package pointers

import "testing"

func TestPtrValue(t *testing.T) {
	if got := Value(Ptr("0x1")); got != "0x1" {
		t.Errorf("Value(Ptr()) = %q, want %q", got, "0x1")
	}
	if got := Value[string](nil); got != "" {
		t.Errorf("Value(nil) = %q, want empty", got)
	}
	if got := Value[int](nil); got != 0 {
		t.Errorf("Value(nil) = %d, want 0", got)
	}
}
