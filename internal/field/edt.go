package field

import (
	"math"
	"runtime"
	"sync"
)

// far stands in for "no occupied cell yet" in the squared transform. It is
// finite so differences of two far values stay well defined.
const far = 1e20

// DistanceTransform returns, for every cell, the Euclidean distance in cells
// to the nearest occupied cell (0 on occupied cells). It is the exact
// separable transform of Felzenszwalb and Huttenlocher: a 1-D squared pass
// down each column followed by one along each row.
func DistanceTransform(occ *Occupancy) []float64 {
	cols, rows := occ.Frame.Cols, occ.Frame.Rows
	sq := make([]float64, len(occ.Cells))
	for i, v := range occ.Cells {
		if v == 0 {
			sq[i] = far
		}
	}

	parallelFor(cols, 32, func(start, end int) {
		s := newScratch(rows)
		for col := start; col < end; col++ {
			for row := 0; row < rows; row++ {
				s.f[row] = sq[row*cols+col]
			}
			s.transform(rows)
			for row := 0; row < rows; row++ {
				sq[row*cols+col] = s.d[row]
			}
		}
	})

	parallelFor(rows, 32, func(start, end int) {
		s := newScratch(cols)
		for row := start; row < end; row++ {
			line := sq[row*cols : (row+1)*cols]
			copy(s.f, line)
			s.transform(cols)
			for col := range line {
				line[col] = math.Sqrt(s.d[col])
			}
		}
	})

	return sq
}

type scratch struct {
	f, d []float64
	v    []int
	z    []float64
}

func newScratch(n int) *scratch {
	return &scratch{
		f: make([]float64, n),
		d: make([]float64, n),
		v: make([]int, n),
		z: make([]float64, n+1),
	}
}

// transform computes the lower envelope of the parabolas rooted at s.f into s.d.
func (s *scratch) transform(n int) {
	f, d, v, z := s.f, s.d, s.v, s.z
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	for q := 1; q < n; q++ {
		fq := f[q] + float64(q*q)
		sect := (fq - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
		for sect <= z[k] {
			k--
			sect = (fq - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
		}
		k++
		v[k] = q
		z[k] = sect
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}

// parallelFor splits [0, n) into contiguous chunks of at least minChunk
// items and runs fn on each chunk concurrently.
func parallelFor(n, minChunk int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
