package canny

import "github.com/anthonynsimon/bild/parallel"

// forEach calls fn for every index in [0, n). The range is split into
// contiguous parts run on separate goroutines; forEach returns once all
// parts are done.
func forEach(n int, fn func(i int)) {
	parallel.Line(n, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}
