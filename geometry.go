package main

import "math"

type vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func distance(a, b vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// clampToWorld keeps a position inside the map bounds minus the avatar
// footprint on the far edges.
func clampToWorld(p vec2) vec2 {
	return vec2{
		X: clamp(p.X, 0, worldWidth-avatarFoot),
		Y: clamp(p.Y, 0, worldHeight-avatarFoot),
	}
}

// camera maps world coordinates onto a viewport for presentation consumers.
type camera struct {
	X    float64
	Y    float64
	Zoom float64
}

func worldToScreen(p vec2, cam camera) vec2 {
	return vec2{
		X: (p.X - cam.X) * cam.Zoom,
		Y: (p.Y - cam.Y) * cam.Zoom,
	}
}

func screenToWorld(p vec2, cam camera) vec2 {
	if cam.Zoom == 0 {
		return vec2{X: cam.X, Y: cam.Y}
	}
	return vec2{
		X: p.X/cam.Zoom + cam.X,
		Y: p.Y/cam.Zoom + cam.Y,
	}
}
