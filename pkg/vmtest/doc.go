// Package vmtest provides testing helpers for view models.
//
// # Leak Detection
//
// NewEnv returns an environment backed by a diagnostics registry. When the
// test ends, every view model created through it must have been disposed:
//
//	func TestPersonVM(t *testing.T) {
//	    env := vmtest.NewEnv(t)
//	    vm := demo.NewPersonVM(person, env.Env())
//	    defer vm.Dispose()
//	    ...
//	}
//
// A view model still alive at cleanup fails the test with a dump of the
// leaked nodes.
//
// # Recording Announcements
//
//	rec := vmtest.Record(vm)
//	person.SetFirst("Ada")
//	vmtest.ExpectAnnounced(t, rec, "FullName", 1)
package vmtest
