package world

// Chebyshev distance: diagonal steps count as one move.
func Distance(a, b Position) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func ManhattanDistance(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// LineOfSight walks the Bresenham line from a to b and reports whether any
// intermediate cell is an obstacle. The endpoints themselves do not block.
func LineOfSight(s Snapshot, a, b Position) bool {
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	sx := 1
	if a.X > b.X {
		sx = -1
	}
	sy := 1
	if a.Y > b.Y {
		sy = -1
	}
	err := dx - dy

	x, y := a.X, a.Y
	for x != b.X || y != b.Y {
		if (x != a.X || y != a.Y) && s.Blocked(Position{X: x, Y: y}) {
			return false
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
	return true
}

// PathExists runs a bounded breadth-first search over the snapshot grid.
// maxNodes caps expansion so a degenerate snapshot cannot stall the tick;
// zero or negative means the full bounded grid.
func PathExists(s Snapshot, from, to Position, maxNodes int) bool {
	if !s.Bounds.Contains(from) || !s.Bounds.Contains(to) {
		return false
	}
	if s.Blocked(to) {
		return false
	}
	if from == to {
		return true
	}
	if maxNodes <= 0 {
		maxNodes = (s.Bounds.MaxX - s.Bounds.MinX + 1) * (s.Bounds.MaxY - s.Bounds.MinY + 1)
	}

	visited := map[Position]bool{from: true}
	queue := []Position{from}
	expanded := 0
	for len(queue) > 0 && expanded < maxNodes {
		cur := queue[0]
		queue = queue[1:]
		expanded++
		for _, next := range neighbors(cur) {
			if visited[next] || !s.Bounds.Contains(next) || s.Blocked(next) {
				continue
			}
			if next == to {
				return true
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return false
}

// neighbors returns the four cardinal neighbors in a fixed order so every
// caller sees the same expansion sequence.
func neighbors(p Position) [4]Position {
	return [4]Position{
		{X: p.X, Y: p.Y - 1},
		{X: p.X + 1, Y: p.Y},
		{X: p.X, Y: p.Y + 1},
		{X: p.X - 1, Y: p.Y},
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
