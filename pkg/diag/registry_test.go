package diag

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/vmbase/pkg/notify"
	"github.com/vango-dev/vmbase/pkg/viewmodel"
)

type account struct {
	notify.Emitter
	Owner string
}

type accountVM struct {
	viewmodel.Base[*account]
}

func newAccountVM(a *account, env *viewmodel.Env) *accountVM {
	vm := &accountVM{}
	vm.Init(vm, a, env)
	return vm
}

type labelVM struct {
	viewmodel.Base[string]
}

func newLabelVM(s string, env *viewmodel.Env) *labelVM {
	vm := &labelVM{}
	vm.Init(vm, s, env)
	return vm
}

// fakeClock advances one second per call.
func fakeClock() func() time.Time {
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestRegistryTracksLifecycle(t *testing.T) {
	reg := NewRegistry(WithClock(fakeClock()))
	env := reg.Env(nil)

	a := newAccountVM(&account{}, env)
	b := newAccountVM(&account{}, env)
	l := newLabelVM("x", env)

	if reg.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", reg.Count())
	}

	all := reg.All()
	if all[0].Node != a || all[1].Node != b || all[2].Node != l {
		t.Error("All() should be ordered by creation")
	}
	if all[0].Type != "*diag.accountVM" {
		t.Errorf("Type = %q", all[0].Type)
	}
	if all[0].ID.Compare(all[1].ID) >= 0 {
		t.Error("record IDs should sort by creation")
	}

	b.Dispose()
	b.Dispose()
	if reg.Count() != 2 {
		t.Errorf("Count() after dispose = %d, want 2", reg.Count())
	}
	if got := reg.ByType("*diag.accountVM"); len(got) != 1 || got[0].Node != a {
		t.Errorf("ByType() = %v", got)
	}

	a.Dispose()
	l.Dispose()
	if reg.Count() != 0 {
		t.Errorf("Count() = %d, want 0", reg.Count())
	}
}

func TestOfTypeAndTypes(t *testing.T) {
	reg := NewRegistry()
	env := reg.Env(nil)
	a := newAccountVM(nil, env)
	newAccountVM(nil, env)
	newLabelVM("y", env)

	vms := OfType[*accountVM](reg)
	if len(vms) != 2 || vms[0] != a {
		t.Errorf("OfType() = %v", vms)
	}

	want := []TypeCount{{"*diag.accountVM", 2}, {"*diag.labelVM", 1}}
	got := reg.Types()
	if len(got) != len(want) {
		t.Fatalf("Types() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Types()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWithItem(t *testing.T) {
	reg := NewRegistry()
	env := reg.Env(nil)
	item := &account{Owner: "ada"}
	a := newAccountVM(item, env)
	b := newAccountVM(item, env)
	newAccountVM(&account{}, env)
	newLabelVM("shared", env)

	got := reg.WithItem(item)
	if len(got) != 2 || got[0].Node != a || got[1].Node != b {
		t.Errorf("WithItem(ptr) = %v", got)
	}
	if got := reg.WithItem("shared"); len(got) != 1 {
		t.Errorf("WithItem(string) = %d records, want 1", len(got))
	}
	if got := reg.WithItem([]int{1}); got != nil {
		t.Errorf("uncomparable item should match nothing, got %v", got)
	}
}

func TestDump(t *testing.T) {
	reg := NewRegistry(WithStacks(true))
	env := reg.Env(nil)
	newAccountVM(&account{Owner: "grace"}, env)

	var buf bytes.Buffer
	if err := reg.Dump(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"1 live view model(s)", "*diag.accountVM", "grace", "goroutine"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestWatch(t *testing.T) {
	reg := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	events, _ := reg.Watch(ctx, 4)

	vm := newAccountVM(nil, reg.Env(nil))
	vm.Dispose()

	for _, want := range []EventKind{EventCreated, EventDisposed} {
		select {
		case ev := <-events:
			if ev.Kind != want || ev.Record.Node != vm {
				t.Errorf("event = %v %v, want %v", ev.Kind, ev.Record.Type, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("no %s event", want)
		}
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Error("unexpected event after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatchStop(t *testing.T) {
	reg := NewRegistry()
	events, stop := reg.Watch(context.Background(), 1)
	if reg.Watchers() != 1 {
		t.Fatalf("Watchers() = %d, want 1", reg.Watchers())
	}

	stop()
	select {
	case _, ok := <-events:
		if ok {
			t.Error("unexpected event after stop")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after stop")
	}
	if reg.Watchers() != 0 {
		t.Errorf("Watchers() = %d after stop, want 0", reg.Watchers())
	}
	stop()
}

func TestWatchDropsWhenFull(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := NewRegistry(WithMetrics(promReg, "test"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, stop := reg.Watch(ctx, 1)
	defer stop()

	env := reg.Env(nil)
	newAccountVM(nil, env)
	newAccountVM(nil, env)

	if got := testutil.ToFloat64(reg.metrics.dropped); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
}

func TestMetrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := NewRegistry(WithMetrics(promReg, "test"), WithClock(fakeClock()))
	env := reg.Env(nil)
	typ := "*diag.accountVM"

	a := newAccountVM(nil, env)
	newAccountVM(nil, env)
	a.Dispose()

	if got := testutil.ToFloat64(reg.metrics.live.WithLabelValues(typ)); got != 1 {
		t.Errorf("live = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.metrics.created.WithLabelValues(typ)); got != 2 {
		t.Errorf("created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(reg.metrics.disposed.WithLabelValues(typ)); got != 1 {
		t.Errorf("disposed = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(reg.metrics.lifetime); n != 1 {
		t.Errorf("lifetime series = %d, want 1", n)
	}
}

func TestDisposeUnknownNodeIgnored(t *testing.T) {
	reg := NewRegistry()
	vm := newAccountVM(nil, nil)
	reg.NodeDisposed(vm)
	if reg.Count() != 0 {
		t.Error("unknown node should be ignored")
	}
}
