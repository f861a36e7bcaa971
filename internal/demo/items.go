package demo

import (
	"github.com/vango-dev/vmbase/pkg/notify"
)

// Person is a change-notifying domain object.
type Person struct {
	notify.Emitter

	first   string
	last    string
	address *Address
	tags    []string
}

// NewPerson creates a person.
func NewPerson(first, last string) *Person {
	return &Person{first: first, last: last}
}

func (p *Person) First() string     { return p.first }
func (p *Person) Last() string      { return p.last }
func (p *Person) Address() *Address { return p.address }
func (p *Person) Tags() []string    { return p.tags }

func (p *Person) SetFirst(v string) error { return notify.Set(&p.Emitter, &p.first, v, "First") }
func (p *Person) SetLast(v string) error  { return notify.Set(&p.Emitter, &p.last, v, "Last") }

func (p *Person) SetAddress(a *Address) error {
	return notify.Set(&p.Emitter, &p.address, a, "Address")
}

// SetTags replaces the tag list. It always announces.
func (p *Person) SetTags(tags []string) error {
	p.tags = append([]string(nil), tags...)
	return p.Raise("Tags")
}

// Address is a change-notifying postal address.
type Address struct {
	notify.Emitter

	street string
	city   string
}

// NewAddress creates an address.
func NewAddress(street, city string) *Address {
	return &Address{street: street, city: city}
}

func (a *Address) Street() string { return a.street }
func (a *Address) City() string   { return a.city }

func (a *Address) SetStreet(v string) error { return notify.Set(&a.Emitter, &a.street, v, "Street") }
func (a *Address) SetCity(v string) error   { return notify.Set(&a.Emitter, &a.city, v, "City") }

// Settings holds application-wide preferences observed through extra
// connections.
type Settings struct {
	notify.Emitter

	theme  string
	locale string
}

// NewSettings creates settings with the light theme and English locale.
func NewSettings() *Settings {
	return &Settings{theme: "light", locale: "en"}
}

func (s *Settings) Theme() string  { return s.theme }
func (s *Settings) Locale() string { return s.locale }

func (s *Settings) SetTheme(v string) error  { return notify.Set(&s.Emitter, &s.theme, v, "Theme") }
func (s *Settings) SetLocale(v string) error { return notify.Set(&s.Emitter, &s.locale, v, "Locale") }
