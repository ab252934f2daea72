package world

import "testing"

func gridSnapshot(obstacles ...Position) Snapshot {
	return Snapshot{
		Bounds:    Rect{MinX: 0, MinY: 0, MaxX: 9, MaxY: 9},
		Obstacles: obstacles,
	}
}

func TestDistance_Chebyshev(t *testing.T) {
	cases := []struct {
		a, b Position
		want int
	}{
		{Position{0, 0}, Position{0, 0}, 0},
		{Position{0, 0}, Position{3, 0}, 3},
		{Position{0, 0}, Position{3, 2}, 3},
		{Position{5, 5}, Position{2, 9}, 4},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Fatalf("Distance(%v,%v)=%d, expected %d", c.a, c.b, got, c.want)
		}
	}
}

func TestLineOfSight_ClearAndBlocked(t *testing.T) {
	clear := gridSnapshot()
	if !LineOfSight(clear, Position{0, 0}, Position{5, 5}) {
		t.Fatalf("expected clear line of sight")
	}

	blocked := gridSnapshot(Position{3, 3})
	if LineOfSight(blocked, Position{0, 0}, Position{6, 6}) {
		t.Fatalf("expected obstacle at (3,3) to block the diagonal")
	}
}

func TestLineOfSight_EndpointsDoNotBlock(t *testing.T) {
	s := gridSnapshot(Position{0, 0}, Position{4, 0})
	if !LineOfSight(s, Position{0, 0}, Position{4, 0}) {
		t.Fatalf("expected endpoints to be ignored")
	}
}

func TestPathExists_AroundWall(t *testing.T) {
	// Vertical wall at x=5 with a gap at y=9.
	wall := make([]Position, 0, 9)
	for y := 0; y < 9; y++ {
		wall = append(wall, Position{X: 5, Y: y})
	}
	s := gridSnapshot(wall...)

	if !PathExists(s, Position{0, 0}, Position{9, 0}, 0) {
		t.Fatalf("expected a path around the wall gap")
	}
}

func TestPathExists_FullyWalledOff(t *testing.T) {
	wall := make([]Position, 0, 10)
	for y := 0; y <= 9; y++ {
		wall = append(wall, Position{X: 5, Y: y})
	}
	s := gridSnapshot(wall...)

	if PathExists(s, Position{0, 0}, Position{9, 0}, 0) {
		t.Fatalf("expected no path through a solid wall")
	}
}

func TestPathExists_SameCellAndBlockedGoal(t *testing.T) {
	s := gridSnapshot(Position{4, 4})
	if !PathExists(s, Position{2, 2}, Position{2, 2}, 0) {
		t.Fatalf("expected trivial path to self")
	}
	if PathExists(s, Position{2, 2}, Position{4, 4}, 0) {
		t.Fatalf("expected blocked goal to be unreachable")
	}
}

func TestPathExists_NodeBudgetCutsSearchShort(t *testing.T) {
	s := gridSnapshot()
	if PathExists(s, Position{0, 0}, Position{9, 9}, 2) {
		t.Fatalf("expected a 2-node budget to give up before reaching the far corner")
	}
}
