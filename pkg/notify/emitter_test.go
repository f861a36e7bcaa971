package notify

import (
	"errors"
	"reflect"
	"testing"
)

func TestEmitterRaise(t *testing.T) {
	var e Emitter
	var got []string
	l := NewFunc(func(p string) error {
		got = append(got, p)
		return nil
	})

	e.Subscribe(l)
	e.Subscribe(l) // deduplicated

	if e.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", e.Len())
	}
	if err := e.Raise("Name"); err != nil {
		t.Fatalf("Raise() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Name"}) {
		t.Errorf("got %v, want [Name]", got)
	}

	e.Unsubscribe(l)
	_ = e.Raise("Age")
	if len(got) != 1 {
		t.Errorf("unsubscribed listener was notified: %v", got)
	}
}

func TestEmitterOrderAndError(t *testing.T) {
	var e Emitter
	var order []int
	boom := errors.New("boom")

	e.Subscribe(NewFunc(func(string) error { order = append(order, 1); return nil }))
	e.Subscribe(NewFunc(func(string) error { order = append(order, 2); return boom }))
	e.Subscribe(NewFunc(func(string) error { order = append(order, 3); return nil }))

	if err := e.Raise("X"); !errors.Is(err, boom) {
		t.Fatalf("Raise() error = %v, want boom", err)
	}
	if !reflect.DeepEqual(order, []int{1, 2}) {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestEmitterUnsubscribeDuringRaise(t *testing.T) {
	var e Emitter
	calls := 0
	var second *Func
	first := NewFunc(func(string) error {
		calls++
		e.Unsubscribe(second)
		return nil
	})
	second = NewFunc(func(string) error {
		calls++
		return nil
	})
	e.Subscribe(first)
	e.Subscribe(second)

	// second is removed before its turn and must not run.
	if err := e.Raise("X"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	calls = 0
	_ = e.Raise("X")
	if calls != 1 {
		t.Errorf("calls after unsubscribe = %d, want 1", calls)
	}
}

func TestSet(t *testing.T) {
	var e Emitter
	var raised []string
	e.Subscribe(NewFunc(func(p string) error { raised = append(raised, p); return nil }))

	name := "a"
	_ = Set(&e, &name, "a", "Name")
	_ = Set(&e, &name, "b", "Name")

	tags := []string{"x"}
	_ = Set(&e, &tags, []string{"x"}, "Tags")
	_ = Set(&e, &tags, []string{"x", "y"}, "Tags")

	if name != "b" {
		t.Errorf("name = %q, want b", name)
	}
	if !reflect.DeepEqual(raised, []string{"Name", "Tags"}) {
		t.Errorf("raised = %v, want [Name Tags]", raised)
	}
}

func TestNextIDUnique(t *testing.T) {
	a, b := NextID(), NextID()
	if a == b || b < a {
		t.Errorf("NextID() not increasing: %d, %d", a, b)
	}
}

func TestNilListenerIgnored(t *testing.T) {
	var e Emitter
	e.Subscribe(nil)
	e.Unsubscribe(nil)
	if e.Len() != 0 {
		t.Errorf("Len() = %d, want 0", e.Len())
	}
}

func TestEmitterSubscribeDuringRaise(t *testing.T) {
	var e Emitter
	calls := 0
	late := NewFunc(func(string) error {
		calls++
		return nil
	})
	e.Subscribe(NewFunc(func(string) error {
		e.Subscribe(late)
		return nil
	}))

	if err := e.Raise("X"); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("listener added during dispatch was called %d times", calls)
	}
	_ = e.Raise("X")
	if calls != 1 {
		t.Errorf("calls on next raise = %d, want 1", calls)
	}
}
