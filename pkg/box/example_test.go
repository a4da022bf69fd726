package box_test

import (
	"fmt"

	"github.com/matzehuels/boxlayout/pkg/box"
	"github.com/matzehuels/boxlayout/pkg/solver"
	"github.com/matzehuels/boxlayout/pkg/view"
)

func Example() {
	views := view.NewRegistry()
	root := view.NewRoot("window", 320, 480)

	showFooter := true
	tree := box.NewVStack(
		box.NewElement(views.Get("title")).Frame(box.Height(44)),
		box.NewVSpacer(),
		box.If(showFooter,
			box.NewElement(views.Get("footer")).Frame(box.Height(32)),
		),
	).Spacing(8).Align(box.AlignLeading)

	compiled := box.Compile(tree, root)

	s := solver.New()
	_ = s.Activate(root.Bounds())
	_ = s.Activate(compiled.Constraints)

	for _, name := range []string{"title", "footer"} {
		f := s.Frame(views.Get(name))
		fmt.Printf("%s: y=%.0f h=%.0f w=%.0f\n", name, f.Y, f.Height, f.Width)
	}
	// Output:
	// title: y=0 h=44 w=320
	// footer: y=448 h=32 w=320
}

func ExampleDescribe() {
	views := view.NewRegistry()
	tree := box.NewHStack(
		box.NewElement(views.Get("icon")).AspectRatio(1, 1, box.Width(24)),
		box.NewInset(box.Insets{Top: 4, Bottom: box.Unbounded},
			box.NewElement(views.Get("label")),
		),
		box.NewHSpacer().MinLength(8),
	).Spacing(6)

	fmt.Print(box.Describe(tree))
	// Output:
	// hstack spacing=6 align=center
	//   group
	//     element "icon" aspect=1:1 width=24
	//     inset 4,0,inf,0
	//       element "label"
	//     hspacer min=8
}

func ExampleIfElse() {
	views := view.NewRegistry()
	compact := false

	tree := box.IfElse(compact,
		box.NewElement(views.Get("summary")),
		box.NewVStack(
			box.NewElement(views.Get("summary")),
			box.NewElement(views.Get("details")),
		),
	)

	compiled := box.Compile(tree, view.NewRoot("window", 100, 100))
	for _, s := range compiled.Surfaces {
		fmt.Println(s.Name())
	}
	// Output:
	// summary
	// details
}
