// Package formats provides parsers for mesh file formats.
package formats

// Note: OBJ (Wavefront) is implemented in obj.go. Only triangulated faces with
// all three position/uv/normal indices are accepted; export with triangulation on.
