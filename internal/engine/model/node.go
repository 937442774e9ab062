package model

import "github.com/Faultbox/midgard-rig/pkg/math"

// Node is one element of the scene graph. It exclusively owns its children
// and its payload.
//
// A node keeps its imported local matrix until the first SetLocalTRS call;
// from then on its local transform is composed from the stored TRS.
type Node struct {
	name     string
	children []*Node
	payload  *Payload

	local    math.Mat4
	position math.Vec3
	rotation math.Quat
	scale    math.Vec3
	hasTRS   bool

	world math.Mat4
}

// Name returns the node name. May be empty.
func (n *Node) Name() string { return n.name }

// Children returns the ordered child list. Callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

// Payload returns the renderable content, or nil for pass-through nodes.
func (n *Node) Payload() *Payload { return n.payload }

// World returns the world transform cached by the last UpdateWorldTransforms.
func (n *Node) World() math.Mat4 { return n.world }

// Local returns the current local transform.
func (n *Node) Local() math.Mat4 {
	if n.hasTRS {
		return math.LocalTRS(n.position, n.rotation, n.scale)
	}
	return n.local
}

// Animated reports whether SetLocalTRS has been called.
func (n *Node) Animated() bool { return n.hasTRS }

// Find returns the first node named name, searching depth first with n
// itself before its children. Returns nil if none matches.
func (n *Node) Find(name string) *Node {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// SetLocalTRS replaces the local transform. World transforms are not
// refreshed until the next UpdateWorldTransforms.
func (n *Node) SetLocalTRS(position math.Vec3, rotation math.Quat, scale math.Vec3) {
	n.position = position
	n.rotation = rotation
	n.scale = scale
	n.hasTRS = true
}

// UpdateWorldTransforms recomputes the world transform of n and its whole
// subtree. The root is passed the identity matrix.
func (n *Node) UpdateWorldTransforms(parent math.Mat4) {
	n.world = math.ComposeWorld(n.Local(), parent)
	for _, c := range n.children {
		c.UpdateWorldTransforms(n.world)
	}
}

// Render draws the subtree, children before their parent. Transforms must
// have been refreshed beforehand.
func (n *Node) Render(ctx RenderContext) {
	for _, c := range n.children {
		c.Render(ctx)
	}

	if n.payload == nil || n.payload.Mesh == nil {
		return
	}
	if n.payload.Material != nil {
		ctx.BindMaterial(n.payload.Material)
	}
	ctx.DrawMesh(n.payload.Mesh, n.world)
}

// Walk visits n and its descendants depth first, parents before children.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.children {
		c.walk(fn, depth+1)
	}
}

// Count returns the number of nodes in the subtree, n included.
func (n *Node) Count() int {
	count := 1
	for _, c := range n.children {
		count += c.Count()
	}
	return count
}

// release frees the GPU resources of the subtree, descendants first.
func (n *Node) release() {
	for _, c := range n.children {
		c.release()
	}
	if n.payload != nil {
		n.payload.release()
	}
}

// NodeBuilder assembles a Node. A builder is used once; Build hands the
// node over and further calls have no effect on it.
type NodeBuilder struct {
	node *Node
}

// NewNodeBuilder starts a node with an identity local transform.
func NewNodeBuilder(name string) *NodeBuilder {
	return &NodeBuilder{node: &Node{
		name:     name,
		local:    math.Identity(),
		rotation: math.QuatIdentity(),
		scale:    math.Vec3One,
		world:    math.Identity(),
	}}
}

// Transform sets the imported local matrix.
func (b *NodeBuilder) Transform(m math.Mat4) *NodeBuilder {
	if b.node != nil {
		b.node.local = m
	}
	return b
}

// TRS sets the local transform from its components.
func (b *NodeBuilder) TRS(position math.Vec3, rotation math.Quat, scale math.Vec3) *NodeBuilder {
	if b.node != nil {
		b.node.SetLocalTRS(position, rotation, scale)
	}
	return b
}

// Payload attaches renderable content.
func (b *NodeBuilder) Payload(p *Payload) *NodeBuilder {
	if b.node != nil {
		b.node.payload = p
	}
	return b
}

// Child appends child. Nil children are ignored.
func (b *NodeBuilder) Child(child *Node) *NodeBuilder {
	if b.node != nil && child != nil {
		b.node.children = append(b.node.children, child)
	}
	return b
}

// Build returns the node.
func (b *NodeBuilder) Build() *Node {
	n := b.node
	b.node = nil
	return n
}
