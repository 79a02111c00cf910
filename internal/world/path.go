package world

// neighbours lists the orthogonal steps before the diagonal ones.
var neighbours = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// NextWaypoint returns where a walker at from should head next to reach
// to over passable tiles. It is the center of the next cell on a shortest
// path, or to itself once the two cells touch. Diagonal steps never cut a
// wall corner. ok is false when to is unreachable.
func (a *Arena) NextWaypoint(from, to Vec) (Vec, bool) {
	fx, fy := from.Cell()
	tx, ty := to.Cell()
	if !a.GetTile(tx, ty).IsPassable() {
		return from, false
	}
	if fx == tx && fy == ty {
		return to, true
	}

	// Search outward from the target so the parent of the start cell is
	// the first step.
	prev := make([]int, a.Width*a.Height)
	for i := range prev {
		prev[i] = -1
	}
	start := ty*a.Width + tx
	prev[start] = start
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cx, cy := cur%a.Width, cur/a.Width
		for _, d := range neighbours {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || nx >= a.Width || ny < 0 || ny >= a.Height {
				continue
			}
			isStart := nx == fx && ny == fy
			if !isStart && !a.GetTile(nx, ny).IsPassable() {
				continue
			}
			if d[0] != 0 && d[1] != 0 &&
				(!a.GetTile(cx+d[0], cy).IsPassable() || !a.GetTile(cx, cy+d[1]).IsPassable()) {
				continue
			}
			n := ny*a.Width + nx
			if prev[n] >= 0 {
				continue
			}
			prev[n] = cur
			if isStart {
				if cur == start {
					return to, true
				}
				return Vec{float64(cx) + 0.5, float64(cy) + 0.5}, true
			}
			queue = append(queue, n)
		}
	}
	return from, false
}
