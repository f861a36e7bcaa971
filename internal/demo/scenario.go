package demo

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/vango-dev/vmbase/pkg/notify"
	"github.com/vango-dev/vmbase/pkg/viewmodel"
)

// RunParentChild reads a parent's child twice, invalidates it and checks
// that the cached child was replaced.
func RunParentChild(env *viewmodel.Env, w io.Writer) error {
	parent := NewParentVM(env)
	defer parent.Dispose()

	child1 := parent.Child()
	child2 := parent.Child()
	if err := parent.RunNotify(); err != nil {
		return err
	}
	child3 := parent.Child()

	checks := []struct {
		ok   bool
		desc string
	}{
		{child1 == child2, "repeated reads return the same child"},
		{child1.IsDisposed(), "the old child is disposed after notify"},
		{child3 != child1, "a new child replaces the old one"},
		{!child3.IsDisposed(), "the new child is alive"},
	}
	for _, c := range checks {
		mark := "ok"
		if !c.ok {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "  [%s] %s\n", mark, c.desc)
		if !c.ok {
			return fmt.Errorf("parent/child scenario: %s", c.desc)
		}
	}
	return nil
}

// RunWalkthrough builds a PersonVM, applies a series of changes and prints
// what each change announced.
func RunWalkthrough(env *viewmodel.Env, w io.Writer) error {
	settings := NewSettings()
	person := NewPerson("Ada", "Byron")
	vm, err := NewPersonVM(person, settings, env)
	if err != nil {
		return err
	}
	defer vm.Dispose()

	var announced []string
	vm.Subscribe(notify.NewFunc(func(property string) error {
		announced = append(announced, property)
		return nil
	}))

	var oldAddress *AddressVM
	steps := []struct {
		desc  string
		apply func() error
	}{
		{"set address", func() error { return person.SetAddress(NewAddress("12 St James's Sq", "London")) }},
		{"read address", func() error { oldAddress = vm.Address(); return nil }},
		{"change surname", func() error { return person.SetLast("Lovelace") }},
		{"change first name", func() error { return person.SetFirst("Augusta Ada") }},
		{"replace address", func() error { return person.SetAddress(NewAddress("Ockham Park", "Surrey")) }},
		{"set tags", func() error { return person.SetTags([]string{"math", "engines"}) }},
		{"switch theme", func() error { return settings.SetTheme("dark") }},
		{"switch locale", func() error { return settings.SetLocale("fr") }},
	}
	for _, s := range steps {
		announced = announced[:0]
		if err := s.apply(); err != nil {
			return fmt.Errorf("%s: %w", s.desc, err)
		}
		fmt.Fprintf(w, "  %-18s -> %s\n", s.desc, formatAnnounced(announced))
	}

	fmt.Fprintf(w, "\n  FullName   %s\n", vm.FullName())
	fmt.Fprintf(w, "  Initials   %s\n", vm.Initials())
	fmt.Fprintf(w, "  Greeting   %s\n", vm.Greeting())
	fmt.Fprintf(w, "  ThemeClass %s\n", vm.ThemeClass())
	fmt.Fprintf(w, "  Renames    %d\n", vm.Renames())
	fmt.Fprintf(w, "  Address    %s (previous disposed: %t)\n", vm.Address().Label(), oldAddress.IsDisposed())
	labels := make([]string, 0, len(vm.Tags()))
	for _, t := range vm.Tags() {
		labels = append(labels, t.Label())
	}
	fmt.Fprintf(w, "  Tags       %s\n", strings.Join(labels, " "))
	return nil
}

func formatAnnounced(names []string) string {
	if len(names) == 0 {
		return "(nothing)"
	}
	return strings.Join(names, ", ")
}

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Donald"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Knuth"}
	cities     = []string{"London", "Arlington", "Manchester", "Austin", "Boston", "Stanford"}
)

// RunWorkload keeps a changing population of view models alive until ctx is
// done, then disposes all of them. It drives the diagnostics server.
func RunWorkload(ctx context.Context, env *viewmodel.Env, interval time.Duration) error {
	settings := NewSettings()
	var live []*PersonVM
	defer func() {
		for _, vm := range live {
			vm.Dispose()
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		switch n := rand.IntN(10); {
		case n < 4 || len(live) == 0:
			p := NewPerson(pick(firstNames), pick(lastNames))
			if err := p.SetAddress(NewAddress("1 Main St", pick(cities))); err != nil {
				return err
			}
			vm, err := NewPersonVM(p, settings, env)
			if err != nil {
				return err
			}
			vm.Address()
			live = append(live, vm)
		case n < 7:
			vm := live[rand.IntN(len(live))]
			if err := vm.Item().SetLast(pick(lastNames)); err != nil {
				return err
			}
			if err := vm.Item().SetAddress(NewAddress("2 High St", pick(cities))); err != nil {
				return err
			}
			vm.Address()
		case n < 8:
			if err := settings.SetTheme(pick([]string{"light", "dark"})); err != nil {
				return err
			}
		default:
			i := rand.IntN(len(live))
			live[i].Dispose()
			live = append(live[:i], live[i+1:]...)
		}
	}
}

func pick(s []string) string {
	return s[rand.IntN(len(s))]
}
