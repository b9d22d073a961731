package sim

import "math/rand"

// Spot is a column in the floor plan
type Spot struct {
	X, Z int
}

// Layout is a floor plan of open and walled columns carved as a braided maze
type Layout struct {
	Cols, Rows int
	Open       [][]bool // [z][x]
	Start, End Spot
}

var (
	jumps = [4]Spot{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}
	steps = [4]Spot{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
)

// Carve builds a cols x rows plan (rounded down to odd, at least 3)
// braid in [0, 1] is the chance a dead end gets opened into a loop
func Carve(cols, rows int, braid float64, rng *rand.Rand) *Layout {
	cols, rows = odd(cols), odd(rows)
	l := &Layout{Cols: cols, Rows: rows, Open: make([][]bool, rows)}
	for z := range l.Open {
		l.Open[z] = make([]bool, cols)
	}
	l.Start = Spot{1, 1}
	l.End = Spot{cols - 2, rows - 2}

	l.backtrack(rng)
	if braid > 0 {
		l.braid(braid, rng)
	}
	return l
}

func (l *Layout) inside(s Spot) bool {
	return s.X > 0 && s.Z > 0 && s.X < l.Cols-1 && s.Z < l.Rows-1
}

func (l *Layout) open(s Spot) bool {
	return s.X >= 0 && s.Z >= 0 && s.X < l.Cols && s.Z < l.Rows && l.Open[s.Z][s.X]
}

// backtrack carves a spanning tree over the odd columns with a depth-first walk
func (l *Layout) backtrack(rng *rand.Rand) {
	stack := []Spot{l.Start}
	l.Open[l.Start.Z][l.Start.X] = true

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		var next []Spot
		for _, j := range jumps {
			n := Spot{cur.X + j.X, cur.Z + j.Z}
			if l.inside(n) && !l.Open[n.Z][n.X] {
				next = append(next, j)
			}
		}
		if len(next) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		j := next[rng.Intn(len(next))]
		l.Open[cur.Z+j.Z/2][cur.X+j.X/2] = true
		l.Open[cur.Z+j.Z][cur.X+j.X] = true
		stack = append(stack, Spot{cur.X + j.X, cur.Z + j.Z})
	}
}

// braid knocks one wall out of some dead ends, never opening a 2x2 hall
func (l *Layout) braid(p float64, rng *rand.Rand) {
	for z := 1; z < l.Rows-1; z += 2 {
		for x := 1; x < l.Cols-1; x += 2 {
			if !l.Open[z][x] || l.exits(Spot{x, z}) != 1 || rng.Float64() >= p {
				continue
			}
			var walls []Spot
			for _, j := range jumps {
				n := Spot{x + j.X, z + j.Z}
				w := Spot{x + j.X/2, z + j.Z/2}
				if l.inside(n) && l.open(n) && !l.open(w) && !l.makesHall(w) {
					walls = append(walls, w)
				}
			}
			if len(walls) > 0 {
				w := walls[rng.Intn(len(walls))]
				l.Open[w.Z][w.X] = true
			}
		}
	}
}

func (l *Layout) exits(s Spot) int {
	n := 0
	for _, d := range steps {
		if l.open(Spot{s.X + d.X, s.Z + d.Z}) {
			n++
		}
	}
	return n
}

// makesHall reports whether opening w would complete a 2x2 open square
func (l *Layout) makesHall(w Spot) bool {
	for _, q := range [4][3]Spot{
		{{-1, -1}, {0, -1}, {-1, 0}},
		{{0, -1}, {1, -1}, {1, 0}},
		{{-1, 0}, {-1, 1}, {0, 1}},
		{{1, 0}, {0, 1}, {1, 1}},
	} {
		if l.open(Spot{w.X + q[0].X, w.Z + q[0].Z}) &&
			l.open(Spot{w.X + q[1].X, w.Z + q[1].Z}) &&
			l.open(Spot{w.X + q[2].X, w.Z + q[2].Z}) {
			return true
		}
	}
	return false
}

// Route is the shortest open path from Start to End, nil if none
func (l *Layout) Route() []Spot {
	if !l.open(l.Start) || !l.open(l.End) {
		return nil
	}
	prev := map[Spot]Spot{l.Start: l.Start}
	queue := []Spot{l.Start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == l.End {
			var path []Spot
			for s := cur; s != l.Start; s = prev[s] {
				path = append(path, s)
			}
			path = append(path, l.Start)
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		for _, d := range steps {
			n := Spot{cur.X + d.X, cur.Z + d.Z}
			if _, seen := prev[n]; !seen && l.open(n) {
				prev[n] = cur
				queue = append(queue, n)
			}
		}
	}
	return nil
}

func odd(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}
