package demo

import (
	"fmt"
	"strings"

	"github.com/vango-dev/vmbase/pkg/viewmodel"
)

// SettingsKey is the extra connection key PersonVM observes settings under.
const SettingsKey = "settings"

// PersonVM presents a Person. It derives FullName and Initials from the
// name, owns an AddressVM and one TagVM per tag, and follows the theme and
// locale of a Settings object.
type PersonVM struct {
	viewmodel.Base[*Person]

	settings *Settings
	renames  int
	hello    string
}

// NewPersonVM creates a view model for p. settings may be nil.
func NewPersonVM(p *Person, settings *Settings, env *viewmodel.Env) (*PersonVM, error) {
	vm := &PersonVM{settings: settings, hello: greetingFor("")}
	vm.Init(vm, p, env)
	if settings != nil {
		if err := vm.CreateExtraConnection(settings, SettingsKey); err != nil {
			vm.Dispose()
			return nil, err
		}
		vm.hello = greetingFor(settings.Locale())
	}
	return vm, nil
}

func (*PersonVM) DeclareDependencies(t *viewmodel.Table) {
	t.DependsOnItem("FullName", "First", "Last")
	t.DependsOnItem("Initials", "First", "Last")
	t.DependsOnItem("Greeting", "First")
	t.DependsOnItem("Address", "Address")
	t.DependsOnItem("Tags", "Tags")
	viewmodel.OnItem(t, (*PersonVM).lastChanged, "Last")

	t.DependsOnExtra("ThemeClass", SettingsKey, "Theme")
	viewmodel.OnExtra(t, SettingsKey, (*PersonVM).localeChanged, "Locale")
}

func (vm *PersonVM) lastChanged() error {
	vm.renames++
	return vm.NotifyProperty("Renames")
}

func (vm *PersonVM) localeChanged() error {
	vm.hello = greetingFor(vm.settings.Locale())
	return vm.NotifyProperty("Greeting")
}

// FullName is "First Last".
func (vm *PersonVM) FullName() string {
	p := vm.Item()
	return strings.TrimSpace(p.First() + " " + p.Last())
}

// Initials is the upper-cased first letter of each name part.
func (vm *PersonVM) Initials() string {
	var b strings.Builder
	for _, part := range []string{vm.Item().First(), vm.Item().Last()} {
		if part != "" {
			b.WriteString(strings.ToUpper(part[:1]))
		}
	}
	return b.String()
}

// Greeting greets the person in the settings locale.
func (vm *PersonVM) Greeting() string {
	return fmt.Sprintf("%s, %s!", vm.hello, vm.Item().First())
}

// Renames is the number of surname changes observed.
func (vm *PersonVM) Renames() int {
	return vm.renames
}

// ThemeClass is the CSS class of the current theme.
func (vm *PersonVM) ThemeClass() string {
	if vm.settings == nil {
		return "theme-light"
	}
	return "theme-" + vm.settings.Theme()
}

// Address returns the view model of the current address, nil when the
// person has none. A new AddressVM replaces the old one whenever the
// person's address is replaced.
func (vm *PersonVM) Address() *AddressVM {
	a := vm.Item().Address()
	if a == nil {
		return nil
	}
	return viewmodel.MustRegisterChild(vm, "Address", func() *AddressVM {
		return NewAddressVM(a, vm.Env())
	})
}

// Tags returns one TagVM per tag.
func (vm *PersonVM) Tags() []*TagVM {
	return viewmodel.MustRegisterChildren(vm, "Tags", func() []*TagVM {
		tags := vm.Item().Tags()
		out := make([]*TagVM, len(tags))
		for i, tag := range tags {
			out[i] = NewTagVM(tag, vm.Env())
		}
		return out
	})
}

func greetingFor(locale string) string {
	switch locale {
	case "de":
		return "Hallo"
	case "fr":
		return "Bonjour"
	case "es":
		return "Hola"
	default:
		return "Hello"
	}
}

// AddressVM presents an Address.
type AddressVM struct {
	viewmodel.Base[*Address]
}

// NewAddressVM creates a view model for a.
func NewAddressVM(a *Address, env *viewmodel.Env) *AddressVM {
	vm := &AddressVM{}
	vm.Init(vm, a, env)
	return vm
}

func (*AddressVM) DeclareDependencies(t *viewmodel.Table) {
	t.DependsOnItem("Label", "Street", "City")
}

// Label is "Street, City".
func (vm *AddressVM) Label() string {
	return vm.Item().Street() + ", " + vm.Item().City()
}

// TagVM presents a single tag.
type TagVM struct {
	viewmodel.Base[string]
}

// NewTagVM creates a view model for tag.
func NewTagVM(tag string, env *viewmodel.Env) *TagVM {
	vm := &TagVM{}
	vm.Init(vm, tag, env)
	return vm
}

// Label is the tag prefixed with '#'.
func (vm *TagVM) Label() string {
	return "#" + vm.Item()
}
