package model

import (
	"fmt"
	"testing"

	"github.com/Faultbox/midgard-rig/pkg/math"
)

const eps = 1e-4

type fakeResource struct {
	released int
}

func (r *fakeResource) Release() { r.released++ }

type drawCall struct {
	mesh     string
	material string
	world    math.Mat4
}

type recordingContext struct {
	bound *Material
	draws []drawCall
}

func (c *recordingContext) BindMaterial(mat *Material) { c.bound = mat }

func (c *recordingContext) DrawMesh(mesh *Mesh, world math.Mat4) {
	call := drawCall{mesh: mesh.Name, world: world}
	if c.bound != nil {
		call.material = c.bound.Name
	}
	c.draws = append(c.draws, call)
}

func meshNode(name string) *Node {
	return NewNodeBuilder(name).Payload(&Payload{
		Mesh:     &Mesh{Name: name, Buffer: &fakeResource{}, IndexCount: 3},
		Material: &Material{Name: name + "_mat", Texture: &fakeResource{}},
	}).Build()
}

func TestUpdateWorldTransformsComposition(t *testing.T) {
	tests := []struct {
		name     string
		pos      math.Vec3
		rot      math.Quat
		scale    math.Vec3
		rootPos  math.Vec3
		rootRot  math.Quat
		rootScal math.Vec3
	}{
		{
			name:     "translation only",
			pos:      math.Vec3{X: 1, Y: 2, Z: 3},
			rot:      math.QuatIdentity(),
			scale:    math.Vec3One,
			rootPos:  math.Vec3{X: -4},
			rootRot:  math.QuatIdentity(),
			rootScal: math.Vec3One,
		},
		{
			name:     "full TRS",
			pos:      math.Vec3{X: 0.5, Y: -1, Z: 2},
			rot:      math.QuatFromAxisAngle(math.Vec3{Y: 1}, 0.7),
			scale:    math.Vec3{X: 2, Y: 1, Z: 0.5},
			rootPos:  math.Vec3{Z: 3},
			rootRot:  math.QuatFromAxisAngle(math.Vec3{X: 1}, -0.4),
			rootScal: math.Vec3{X: 1.5, Y: 1.5, Z: 1.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := NewNodeBuilder("child").TRS(tt.pos, tt.rot, tt.scale).Build()
			root := NewNodeBuilder("root").Child(child).Build()

			root.UpdateWorldTransforms(math.Identity())
			if root.World() != math.Identity() {
				t.Errorf("root world = %v, want identity", root.World())
			}

			// Moving the root must carry the child along.
			root.SetLocalTRS(tt.rootPos, tt.rootRot, tt.rootScal)
			root.UpdateWorldTransforms(math.Identity())

			want := root.World().
				Mul(math.TranslateVec(tt.pos)).
				Mul(tt.rot.ToMat4()).
				Mul(math.ScaleVec(tt.scale))
			if !child.World().ApproxEqual(want, eps) {
				t.Errorf("child world = %v, want %v", child.World(), want)
			}
		})
	}
}

func TestImportedMatrixUntilAnimated(t *testing.T) {
	imported := math.Translate(0, 5, 0)
	n := NewNodeBuilder("bone").Transform(imported).Build()

	if n.Animated() {
		t.Error("fresh node reports animated")
	}
	if n.Local() != imported {
		t.Errorf("local = %v, want imported matrix", n.Local())
	}

	n.SetLocalTRS(math.Vec3{X: 1}, math.QuatIdentity(), math.Vec3One)
	if got := n.Local().Translation(); got != (math.Vec3{X: 1}) {
		t.Errorf("local translation after SetLocalTRS = %v, want (1, 0, 0)", got)
	}

	// No recompute until asked.
	if n.World() != math.Identity() {
		t.Errorf("world changed before UpdateWorldTransforms: %v", n.World())
	}
}

func TestFindUniqueNames(t *testing.T) {
	// Chain of depth 6 plus a fan of siblings at each level.
	var names []string
	var build func(depth int) *Node
	build = func(depth int) *Node {
		name := fmt.Sprintf("n%d", depth)
		names = append(names, name)
		b := NewNodeBuilder(name)
		for i := 0; i < 2; i++ {
			leaf := fmt.Sprintf("n%d_leaf%d", depth, i)
			names = append(names, leaf)
			b.Child(NewNodeBuilder(leaf).Build())
		}
		if depth < 6 {
			b.Child(build(depth + 1))
		}
		return b.Build()
	}
	root := build(0)

	if root.Count() != len(names) {
		t.Fatalf("count = %d, want %d", root.Count(), len(names))
	}

	for _, name := range names {
		first := root.Find(name)
		if first == nil {
			t.Fatalf("Find(%q) returned nil", name)
		}
		if first.Name() != name {
			t.Errorf("Find(%q) returned %q", name, first.Name())
		}
		if again := root.Find(name); again != first {
			t.Errorf("Find(%q) not stable across calls", name)
		}
	}

	for _, missing := range []string{"", "n7", "leaf", "N0"} {
		if n := root.Find(missing); n != nil {
			t.Errorf("Find(%q) = %q, want nil", missing, n.Name())
		}
	}
}

func TestFindFirstMatchWins(t *testing.T) {
	deep := NewNodeBuilder("dup").Build()
	shallow := NewNodeBuilder("dup").Build()
	root := NewNodeBuilder("root").
		Child(NewNodeBuilder("a").Child(deep).Build()).
		Child(shallow).
		Build()

	if got := root.Find("dup"); got != deep {
		t.Error("depth-first search should reach the first subtree's match first")
	}
}

func TestRenderChildrenBeforeParent(t *testing.T) {
	leafA := meshNode("a")
	leafB := meshNode("b")
	parent := NewNodeBuilder("parent").Payload(&Payload{
		Mesh:     &Mesh{Name: "parent"},
		Material: &Material{Name: "parent_mat"},
	}).Child(leafA).Child(leafB).Build()
	group := NewNodeBuilder("group").Child(parent).Build()

	group.SetLocalTRS(math.Vec3{Y: 2}, math.QuatIdentity(), math.Vec3One)
	group.UpdateWorldTransforms(math.Identity())

	ctx := &recordingContext{}
	group.Render(ctx)

	want := []string{"a", "b", "parent"}
	if len(ctx.draws) != len(want) {
		t.Fatalf("got %d draws, want %d", len(ctx.draws), len(want))
	}
	for i, w := range want {
		if ctx.draws[i].mesh != w {
			t.Errorf("draw %d = %q, want %q", i, ctx.draws[i].mesh, w)
		}
		if ctx.draws[i].material != w+"_mat" {
			t.Errorf("draw %d bound material %q", i, ctx.draws[i].material)
		}
		if got := ctx.draws[i].world.Translation(); got != (math.Vec3{Y: 2}) {
			t.Errorf("draw %d world translation = %v", i, got)
		}
	}
}

func TestWalkOrderAndPrune(t *testing.T) {
	root := NewNodeBuilder("root").
		Child(NewNodeBuilder("a").Child(NewNodeBuilder("a1").Build()).Build()).
		Child(NewNodeBuilder("b").Build()).
		Build()

	var visited []string
	var depths []int
	root.Walk(func(n *Node, depth int) bool {
		visited = append(visited, n.Name())
		depths = append(depths, depth)
		return n.Name() != "a"
	})

	want := []string{"root", "a", "b"}
	if fmt.Sprint(visited) != fmt.Sprint(want) {
		t.Errorf("visited %v, want %v", visited, want)
	}
	if fmt.Sprint(depths) != fmt.Sprint([]int{0, 1, 1}) {
		t.Errorf("depths %v", depths)
	}
}

func TestNodeBuilderSingleUse(t *testing.T) {
	b := NewNodeBuilder("x")
	n := b.Build()
	b.Child(NewNodeBuilder("late").Build())

	if len(n.Children()) != 0 {
		t.Error("builder modified node after Build")
	}
	if b.Build() != nil {
		t.Error("second Build should return nil")
	}
}
