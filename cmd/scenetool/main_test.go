package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Faultbox/midgard-rig/pkg/formats"
	"github.com/Faultbox/midgard-rig/pkg/math"
)

func testScene() *formats.Scene {
	return &formats.Scene{
		Root: &formats.SceneNode{
			Name: "Root",
			Children: []*formats.SceneNode{
				{Name: "Bone", Meshes: []int{0}},
			},
		},
		Meshes: []formats.SceneMesh{{
			Name:      "tri",
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			TexCoords: make([][2]float32, 3),
			Indices:   []uint32{0, 1, 2},
		}},
		Materials: []formats.SceneMaterial{{Name: "skin", Diffuse: [3]float32{1, 1, 1}}},
		Animations: []formats.SceneAnimation{{
			Name:           "walk",
			TicksPerSecond: 1000,
			Channels: []formats.NodeAnimation{{
				NodeName: "Bone",
				PositionKeys: []formats.VectorKey{
					{Time: 0, Value: math.Vec3{}},
					{Time: 1, Value: math.Vec3{X: 1}},
				},
			}},
		}},
	}
}

func TestPrintInfo(t *testing.T) {
	var buf bytes.Buffer
	printInfo(&buf, testScene())

	out := buf.String()
	for _, want := range []string{"Nodes:      2", "Vertices:   3", "Faces:      1", "Animations: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintTree(t *testing.T) {
	var buf bytes.Buffer
	printTree(&buf, testScene(), true)

	want := "Root\n  Bone [0]\n"
	if buf.String() != want {
		t.Errorf("tree = %q, want %q", buf.String(), want)
	}
}

func TestPrintAnimations(t *testing.T) {
	var buf bytes.Buffer
	printAnimations(&buf, testScene())

	out := buf.String()
	if !strings.HasPrefix(out, "walk: 1 channels, 1.0 ticks at 1000 ticks/s (1.00s)") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "Bone") {
		t.Errorf("channel line missing:\n%s", out)
	}

	buf.Reset()
	printAnimations(&buf, &formats.Scene{})
	if buf.String() != "No animations\n" {
		t.Errorf("empty scene = %q", buf.String())
	}
}
