package model

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rig/internal/engine/animation"
	"github.com/Faultbox/midgard-rig/internal/logger"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

// State is the playback state of a Model.
type State int

const (
	// Idle means no animation was selected yet.
	Idle State = iota
	// Playing means an animation set drives the nodes on every Update.
	Playing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Model owns a node tree and the animation sets that drive it.
type Model struct {
	root    *Node
	sets    []*animation.Set
	current *animation.Set
	search  animation.KeySearch
}

// New creates a model. The model takes ownership of root and sets.
func New(root *Node, sets []*animation.Set) *Model {
	if root == nil {
		root = NewNodeBuilder("").Build()
	}
	m := &Model{root: root, sets: sets}
	m.root.UpdateWorldTransforms(math.Identity())
	return m
}

// Root returns the root node.
func (m *Model) Root() *Node {
	return m.root
}

// State returns Playing once an animation has been selected.
func (m *Model) State() State {
	if m.current == nil {
		return Idle
	}
	return Playing
}

// Current returns the active animation set, or nil while idle.
func (m *Model) Current() *animation.Set {
	return m.current
}

// Animations returns the animation names in import order.
func (m *Model) Animations() []string {
	names := make([]string, len(m.sets))
	for i, s := range m.sets {
		names[i] = s.Name
	}
	return names
}

// SelectAnimation activates the set called name and rewinds it.
// An unknown name leaves the model unchanged and returns false.
func (m *Model) SelectAnimation(name string) bool {
	for _, s := range m.sets {
		if s.Name != name {
			continue
		}
		s.Reset()
		s.SetKeySearch(m.search)
		m.current = s
		logger.Debug("animation selected",
			zap.String("name", name),
			zap.Int("channels", len(s.Channels)),
			zap.Float64("duration_s", s.DurationSeconds()))
		return true
	}

	logger.Debug("animation not found", zap.String("name", name))
	return false
}

// SetKeySearch sets the key lookup used by every animation set.
func (m *Model) SetKeySearch(k animation.KeySearch) {
	m.search = k
	for _, s := range m.sets {
		s.SetKeySearch(k)
	}
}

// Update advances the active animation by dt seconds and refreshes the
// world transforms of the whole tree. Channels without a target name or
// whose target node does not exist are skipped.
func (m *Model) Update(dt float64) {
	if set := m.current; set != nil {
		for _, ch := range set.Channels {
			// Unnamed nodes are mesh leaves or a synthetic root
			if ch.NodeName == "" {
				continue
			}
			target := m.root.Find(ch.NodeName)
			if target == nil {
				logger.Debug("animation target not found",
					zap.String("animation", set.Name),
					zap.String("node", ch.NodeName))
				continue
			}
			ch.Update(dt, set.TicksPerSecond, target)
		}
	}

	m.root.UpdateWorldTransforms(math.Identity())
}

// Render draws the tree.
func (m *Model) Render(ctx RenderContext) {
	m.root.Render(ctx)
}

// Bounds returns the world-space box around all meshes at the current pose.
func (m *Model) Bounds() Bounds {
	out := EmptyBounds()
	m.root.Walk(func(n *Node, _ int) bool {
		if p := n.payload; p != nil && p.Mesh != nil {
			mergeBounds(&out, TransformBounds(p.Mesh.Bounds, n.world))
		}
		return true
	})
	return out
}

// Close releases every GPU resource held by the tree.
func (m *Model) Close() {
	m.root.release()
}
