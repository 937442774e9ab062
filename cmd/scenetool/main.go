// scenetool is a CLI utility for inspecting skeletal model files.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Faultbox/midgard-rig/internal/engine/animation"
	"github.com/Faultbox/midgard-rig/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		run(args, "info", printInfo)
	case "tree":
		cmdTree(args)
	case "anims", "animations":
		run(args, "anims", printAnimations)
	case "materials", "mats":
		run(args, "materials", printMaterials)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenetool - skeletal model inspection utility

Usage:
  scenetool <command> [options]

Commands:
  info <model>                 Show scene statistics
  tree <model> [-meshes]       Print the node hierarchy
  anims <model>                List animations and their channels
  materials <model>            List materials and textures

Examples:
  scenetool info hero.glb
  scenetool tree -meshes hero.gltf
  scenetool anims hero.glb`)
}

func openScene(path string) *formats.Scene {
	scene, err := formats.ParseFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return scene
}

func run(args []string, name string, show func(io.Writer, *formats.Scene)) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: scenetool %s <model>\n", name)
		os.Exit(1)
	}
	show(os.Stdout, openScene(args[0]))
}

func cmdTree(args []string) {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	meshes := fs.Bool("meshes", false, "Show mesh indices per node")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scenetool tree <model> [-meshes]")
		os.Exit(1)
	}

	printTree(os.Stdout, openScene(fs.Arg(0)), *meshes)
}

func printInfo(w io.Writer, scene *formats.Scene) {
	vertices, faces, bones := 0, 0, 0
	for i := range scene.Meshes {
		m := &scene.Meshes[i]
		vertices += len(m.Positions)
		faces += m.FaceCount()
		bones += len(m.Bones)
	}

	fmt.Fprintf(w, "Nodes:      %d\n", scene.NodeCount())
	fmt.Fprintf(w, "Meshes:     %d\n", len(scene.Meshes))
	fmt.Fprintf(w, "Vertices:   %d\n", vertices)
	fmt.Fprintf(w, "Faces:      %d\n", faces)
	fmt.Fprintf(w, "Bones:      %d\n", bones)
	fmt.Fprintf(w, "Materials:  %d\n", len(scene.Materials))
	fmt.Fprintf(w, "Animations: %d\n", len(scene.Animations))
}

func printTree(w io.Writer, scene *formats.Scene, meshes bool) {
	var walk func(n *formats.SceneNode, depth int)
	walk = func(n *formats.SceneNode, depth int) {
		fmt.Fprintf(w, "%s%s", strings.Repeat("  ", depth), n.Name)
		if meshes && len(n.Meshes) > 0 {
			fmt.Fprintf(w, " %v", n.Meshes)
		}
		fmt.Fprintln(w)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	if scene.Root != nil {
		walk(scene.Root, 0)
	}
}

func printAnimations(w io.Writer, scene *formats.Scene) {
	if len(scene.Animations) == 0 {
		fmt.Fprintln(w, "No animations")
		return
	}

	for _, src := range scene.Animations {
		set := animation.NewSet(src)
		fmt.Fprintf(w, "%s: %d channels, %.1f ticks at %g ticks/s (%.2fs)\n",
			set.Name, len(set.Channels), set.Duration(), set.TicksPerSecond, set.DurationSeconds())
		for _, ch := range set.Channels {
			fmt.Fprintf(w, "  %-24s pos %-4d rot %-4d scale %d\n",
				ch.NodeName, len(ch.PositionKeys), len(ch.RotationKeys), len(ch.ScaleKeys))
		}
	}
}

func printMaterials(w io.Writer, scene *formats.Scene) {
	for i, m := range scene.Materials {
		texture := m.DiffuseTexture
		if texture == "" {
			texture = "(none)"
		}
		fmt.Fprintf(w, "%d %-20s diffuse %.2f texture %s\n", i, m.Name, m.Diffuse, texture)
	}
}
