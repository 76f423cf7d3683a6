package main

import "testing"

func TestClampToWorld(t *testing.T) {
	cases := []struct {
		in   vec2
		want vec2
	}{
		{vec2{X: -10, Y: -10}, vec2{X: 0, Y: 0}},
		{vec2{X: 5000, Y: 5000}, vec2{X: worldWidth - avatarFoot, Y: worldHeight - avatarFoot}},
		{vec2{X: 400, Y: 300}, vec2{X: 400, Y: 300}},
	}
	for _, tc := range cases {
		if got := clampToWorld(tc.in); got != tc.want {
			t.Fatalf("clamp %+v = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestCameraRoundTrip(t *testing.T) {
	cam := camera{X: 120, Y: 80, Zoom: 2}
	world := vec2{X: 400, Y: 300}
	back := screenToWorld(worldToScreen(world, cam), cam)
	if back != world {
		t.Fatalf("round trip %+v -> %+v", world, back)
	}

	flat := camera{X: 10, Y: 20}
	if got := screenToWorld(vec2{X: 99, Y: 99}, flat); got != (vec2{X: 10, Y: 20}) {
		t.Fatalf("zero zoom should pin to the camera origin, got %+v", got)
	}
}

func TestDistance(t *testing.T) {
	if d := distance(vec2{X: 0, Y: 0}, vec2{X: 3, Y: 4}); d != 5 {
		t.Fatalf("distance = %f, want 5", d)
	}
}
