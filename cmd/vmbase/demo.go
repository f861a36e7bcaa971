package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vmbase/internal/demo"
)

func demoCmd(a *app) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the sample view model scenarios",
		Long: `Run the parent/child replacement scenario and a walkthrough of a
person view model with derived properties, owned children and
settings observed through an extra connection.

Examples:
  vmbase demo
  vmbase demo --dump=false
  VMBASE_LOG_LEVEL=debug vmbase demo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			reg, env := a.registry()

			printBanner(out)
			fmt.Fprintln(out, "  parent/child")
			if err := demo.RunParentChild(env, out); err != nil {
				return err
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  person walkthrough")
			if err := demo.RunWalkthrough(env, out); err != nil {
				return err
			}
			fmt.Fprintln(out)

			if n := reg.Count(); n > 0 {
				warn(out, "%d view model(s) still alive after the scenarios", n)
			} else {
				success(out, "all scenario view models disposed")
			}
			if !dump {
				return nil
			}

			// A small live graph to show what the registry records.
			p := demo.NewPerson("Grace", "Hopper")
			if err := p.SetAddress(demo.NewAddress("Navy Yard", "Arlington")); err != nil {
				return err
			}
			if err := p.SetTags([]string{"cobol", "compilers"}); err != nil {
				return err
			}
			vm, err := demo.NewPersonVM(p, demo.NewSettings(), env)
			if err != nil {
				return err
			}
			defer vm.Dispose()
			vm.Address()
			vm.Tags()

			fmt.Fprintln(out)
			return reg.Dump(out)
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", true, "Dump a sample view model graph")

	return cmd
}
