// objtool is a CLI utility for inspecting Wavefront OBJ meshes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Faultbox/objscene/internal/config"
	"github.com/Faultbox/objscene/internal/engine/model"
	"github.com/Faultbox/objscene/internal/logger"
	"github.com/Faultbox/objscene/internal/resource"
	"github.com/Faultbox/objscene/pkg/formats"
	"github.com/Faultbox/objscene/pkg/math"
)

func main() {
	level := "warn"
	if os.Getenv("OBJTOOL_DEBUG") != "" {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	code := run(os.Args[1:], os.Stdout, os.Stderr)
	logger.Sync()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	command := args[0]
	args = args[1:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args, stdout)
	case "validate", "check":
		err = cmdValidate(args, stdout)
	case "dump":
		err = cmdDump(args, stdout)
	case "tangents":
		err = cmdTangents(args, stdout)
	case "config":
		err = cmdConfig(args, stdout)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}

	if err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "Usage: objtool %s\n", ue)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `objtool - Wavefront OBJ mesh utility

Usage:
  objtool <command> [options]

Commands:
  info <file.obj>...                           Show mesh statistics
  validate [-uv P] <file.obj>...               Parse and expand, report problems
  dump [-n N] [-mode M] [-uv P] <file.obj>     Print expanded vertices
  tangents [-mode M] [-uv P] <file.obj>        Print per-vertex tangent frames
  config [path]                                Write the default viewer config

Tangent modes: overwrite (default), accumulate
Degenerate UV policies: propagate (default), reject, skip
Set OBJTOOL_DEBUG=1 for debug logging.

Examples:
  objtool info crate.obj
  objtool validate meshes/*.obj
  objtool tangents -mode accumulate -uv skip crate.obj`)
}

// usageError carries the argument synopsis of a misused command.
type usageError string

func (e usageError) Error() string { return string(e) }

func usage(synopsis string) error {
	return usageError(synopsis)
}

func cmdInfo(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil || fs.NArg() < 1 {
		return usage("info <file.obj>...")
	}

	store := resource.NewStore("obj", func(_ context.Context, path string) (*formats.OBJ, error) {
		return formats.ParseOBJFile(path)
	})
	objs, err := store.LoadAll(context.Background(), fs.Args())
	if err != nil {
		return err
	}

	for i, obj := range objs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printInfo(w, fs.Arg(i), obj)
	}
	return nil
}

func printInfo(w io.Writer, path string, obj *formats.OBJ) {
	name := obj.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "File:      %s\n", path)
	fmt.Fprintf(w, "Object:    %s\n", name)
	fmt.Fprintf(w, "Vertices:  %d\n", obj.VertexCount())
	fmt.Fprintf(w, "Triangles: %d\n", obj.TriangleCount())
	if min, max, ok := obj.Bounds(); ok {
		fmt.Fprintf(w, "Bounds:    (%g, %g, %g) - (%g, %g, %g)\n", min.X, min.Y, min.Z, max.X, max.Y, max.Z)
	}
}

func cmdValidate(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	uv := fs.String("uv", "reject", "Degenerate UV policy")
	if err := fs.Parse(args); err != nil || fs.NArg() < 1 {
		return usage("validate [-uv P] <file.obj>...")
	}

	policy, err := model.ParseDegenerateUVPolicy(*uv)
	if err != nil {
		return err
	}
	loader := resource.MeshLoader(model.ExpandOptions{DegenerateUV: policy})

	failed := 0
	for _, path := range fs.Args() {
		if _, err := loader(context.Background(), path); err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, fs.NArg())
	}
	return nil
}

// expandArgs parses the shared -mode/-uv flags and expands the single file argument.
// synopsis is shown on misuse.
func expandArgs(synopsis string, args []string, extra func(*flag.FlagSet)) (*model.VertexBuffer, error) {
	name, _, _ := strings.Cut(synopsis, " ")
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	mode := fs.String("mode", "overwrite", "Tangent mode")
	uv := fs.String("uv", "propagate", "Degenerate UV policy")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return nil, usage(synopsis)
	}

	tangents, err := model.ParseTangentMode(*mode)
	if err != nil {
		return nil, err
	}
	policy, err := model.ParseDegenerateUVPolicy(*uv)
	if err != nil {
		return nil, err
	}

	vb, err := resource.MeshLoader(model.ExpandOptions{Tangents: tangents, DegenerateUV: policy})(context.Background(), fs.Arg(0))
	if err != nil {
		return nil, err
	}
	return vb, nil
}

func cmdDump(args []string, w io.Writer) error {
	var limit *int
	vb, err := expandArgs("dump [-n N] [-mode M] [-uv P] <file.obj>", args, func(fs *flag.FlagSet) {
		limit = fs.Int("n", 0, "Limit output to N vertices (0 = all)")
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "# %d vertices, mode %s\n", len(vb.Vertices), vb.Mode)
	fmt.Fprintln(w, "# idx  position  normal  uv  tangent  bitangent")
	for i, v := range vb.Vertices {
		if *limit > 0 && i >= *limit {
			break
		}
		fmt.Fprintf(w, "%d  %s  %s  %g %g  %s  %s\n", i,
			vec3(v.Position), vec3(v.Normal), v.TexCoord[0], v.TexCoord[1], vec3(v.Tangent), vec3(v.Bitangent))
	}
	return nil
}

func cmdTangents(args []string, w io.Writer) error {
	vb, err := expandArgs("tangents [-mode M] [-uv P] <file.obj>", args, nil)
	if err != nil {
		return err
	}

	nonFinite := 0
	for i, v := range vb.Vertices {
		if !finite(v.Tangent) || !finite(v.Bitangent) {
			nonFinite++
		}
		fmt.Fprintf(w, "%d  T %s  B %s\n", i, vec3(v.Tangent), vec3(v.Bitangent))
	}
	fmt.Fprintf(w, "# %d vertices, %d with non-finite frames\n", len(vb.Vertices), nonFinite)
	return nil
}

func cmdConfig(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		return usage("config [path]")
	}

	cfg := config.Default()
	path := config.DefaultPath()
	var err error
	if fs.NArg() == 1 {
		path = fs.Arg(0)
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}

func vec3(v [3]float32) string {
	return fmt.Sprintf("%g %g %g", v[0], v[1], v[2])
}

func finite(v [3]float32) bool {
	return math.Vec3From(v).IsFinite()
}
