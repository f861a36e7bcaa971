// Package demo contains sample view models used by the vmbase command and
// by tests: a parent/child pair showing replace-on-invalidate, and a person
// view model using every kind of dependency declaration.
package demo
