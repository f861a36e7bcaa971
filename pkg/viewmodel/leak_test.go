package viewmodel_test

import (
	"testing"

	"github.com/vango-dev/vmbase/pkg/notify"
	"github.com/vango-dev/vmbase/pkg/viewmodel"
	"github.com/vango-dev/vmbase/pkg/vmtest"
)

type folder struct {
	notify.Emitter
	name string
}

func (f *folder) Rename(v string) error { return notify.Set(&f.Emitter, &f.name, v, "Name") }

type folderVM struct {
	viewmodel.Base[*folder]
}

func newFolderVM(f *folder, env *viewmodel.Env) *folderVM {
	vm := &folderVM{}
	vm.Init(vm, f, env)
	return vm
}

func (*folderVM) DeclareDependencies(t *viewmodel.Table) {
	t.DependsOnItem("Sub", "Name")
}

func (vm *folderVM) Sub() *folderVM {
	return viewmodel.MustRegisterChild(vm, "Sub", func() *folderVM {
		return newFolderVM(&folder{}, vm.Env())
	})
}

// Every child replaced by invalidation and every node disposed with its root
// leaves nothing behind.
func TestGraphLeavesNoLiveNodes(t *testing.T) {
	env := vmtest.NewEnv(t)
	f := &folder{}
	root := newFolderVM(f, env.Env())

	first := root.Sub().Sub()
	for _, name := range []string{"a", "b", "c"} {
		if err := f.Rename(name); err != nil {
			t.Fatal(err)
		}
		root.Sub().Sub()
	}
	vmtest.ExpectDisposed(t, first)

	// root, root.Sub and root.Sub.Sub
	if env.Live() != 3 {
		t.Errorf("Live() = %d, want 3", env.Live())
	}
	root.Dispose()
}
