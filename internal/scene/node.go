// Package scene is a small retained-mode scene graph: nodes with local
// transforms, drawable objects, lights, and explicit resource lifetimes.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Node is a transform in the scene graph, optionally carrying an Object.
// Rotation is XYZ Euler angles in radians; Scale is per-axis.
type Node struct {
	Name     string
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3
	Visible  bool
	Object   Object

	parent   *Node
	children []*Node
}

// NewNode creates an empty visible group node.
func NewNode(name string) *Node {
	return &Node{
		Name:    name,
		Scale:   mgl64.Vec3{1, 1, 1},
		Visible: true,
	}
}

// NewObjectNode creates a visible node carrying obj.
func NewObjectNode(name string, obj Object) *Node {
	n := NewNode(name)
	n.Object = obj
	return n
}

// Parent returns the parent node, or nil for a detached or root node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Add attaches child, detaching it from any previous parent first.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child. It reports whether child was attached to n.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// SetUniformScale sets the same scale on all three axes.
func (n *Node) SetUniformScale(s float64) {
	n.Scale = mgl64.Vec3{s, s, s}
}

// LocalMatrix returns T·Rx·Ry·Rz·S.
func (n *Node) LocalMatrix() mgl64.Mat4 {
	t := mgl64.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	r := mgl64.HomogRotate3DX(n.Rotation[0]).
		Mul4(mgl64.HomogRotate3DY(n.Rotation[1])).
		Mul4(mgl64.HomogRotate3DZ(n.Rotation[2]))
	s := mgl64.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// WorldMatrix composes local matrices from the root down to n.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the node origin in world space.
func (n *Node) WorldPosition() mgl64.Vec3 {
	return mgl64.TransformCoordinate(mgl64.Vec3{}, n.WorldMatrix())
}

// WorldVisible reports whether n and all of its ancestors are visible.
func (n *Node) WorldVisible() bool {
	for p := n; p != nil; p = p.parent {
		if !p.Visible {
			return false
		}
	}
	return true
}

// Traverse calls fn for n and every descendant, depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// TraverseVisible is Traverse that skips invisible subtrees.
func (n *Node) TraverseVisible(fn func(*Node)) {
	if !n.Visible {
		return
	}
	fn(n)
	for _, c := range n.children {
		c.TraverseVisible(fn)
	}
}
