package chart_test

import (
	"fmt"

	"github.com/matzehuels/timeslice/pkg/chart"
)

func ExampleBuild() {
	l := chart.Build([]chart.Bucket{
		{Label: "work", Value: 6},
		{Label: "sleep", Value: 3},
		{Label: "exercise", Value: 1},
	}, "Today")

	fmt.Printf("canvas: %.0fx%.0f\n", l.Width, l.Height)
	fmt.Println("total:", l.Center[0].Value, l.Center[1].Value)
	for _, s := range l.Slices {
		fmt.Printf("%-8s %5.1f° label=%q\n", s.Label, s.Sweep, s.PctLabel.Value)
	}
	// Output:
	// canvas: 1100x550
	// total: 10.0 hours
	// work     216.0° label="60.0%"
	// sleep    108.0° label="30.0%"
	// exercise  36.0° label="10.0%"
}

func ExampleBuild_empty() {
	l := chart.Build([]chart.Bucket{{Label: "work", Value: 0}}, "Today")
	fmt.Println(l == nil)
	// Output:
	// true
}

func ExampleCanvasHeight() {
	// The canvas only grows once the legend outgrows the pie.
	for _, n := range []int{1, 8, 9, 20} {
		fmt.Printf("%2d categories: %.0f\n", n, chart.CanvasHeight(n))
	}
	// Output:
	//  1 categories: 550
	//  8 categories: 550
	//  9 categories: 578
	// 20 categories: 1040
}
