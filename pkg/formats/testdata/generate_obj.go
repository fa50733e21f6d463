//go:build ignore

// This program generates a tessellated grid OBJ file for unit tests.
// Run with: go run generate_obj.go
package main

import (
	"bufio"
	"fmt"
	"os"
)

// cells per side
const n = 2

func main() {
	f, err := os.Create("grid.obj")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	fmt.Fprintf(w, "# %dx%d grid in the XY plane\n", n, n)
	fmt.Fprintln(w, "o grid")

	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			fmt.Fprintf(w, "v %d %d 0\n", x, y)
		}
	}
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			fmt.Fprintf(w, "vt %g %g\n", float64(x)/n, float64(y)/n)
		}
	}
	fmt.Fprintln(w, "vn 0 0 1")

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			a := y*(n+1) + x + 1
			b := a + 1
			c := a + n + 2
			d := a + n + 1
			fmt.Fprintf(w, "f %d/%d/1 %d/%d/1 %d/%d/1\n", a, a, b, b, c, c)
			fmt.Fprintf(w, "f %d/%d/1 %d/%d/1 %d/%d/1\n", a, a, c, c, d, d)
		}
	}
}
