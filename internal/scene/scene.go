package scene

import "github.com/lucasb-eyer/go-colorful"

// Scene is the root of the graph plus its lights.
type Scene struct {
	Root       *Node
	Background colorful.Color

	lights []*Light
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{Root: NewNode("root")}
}

// Add attaches a node to the root.
func (s *Scene) Add(n *Node) {
	s.Root.Add(n)
}

// Remove detaches a node from the root.
func (s *Scene) Remove(n *Node) bool {
	return s.Root.Remove(n)
}

// AddLight registers a light.
func (s *Scene) AddLight(l *Light) {
	if l == nil {
		return
	}
	s.lights = append(s.lights, l)
}

// RemoveLight unregisters a light and reports whether it was present.
func (s *Scene) RemoveLight(l *Light) bool {
	for i, x := range s.lights {
		if x == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return true
		}
	}
	return false
}

// Lights returns the registered lights.
func (s *Scene) Lights() []*Light {
	return append([]*Light(nil), s.lights...)
}

// Traverse visits every node under the root.
func (s *Scene) Traverse(fn func(*Node)) {
	s.Root.Traverse(fn)
}

// NodeCount returns the number of nodes under the root, excluding it.
func (s *Scene) NodeCount() int {
	n := -1
	s.Root.Traverse(func(*Node) { n++ })
	return n
}
