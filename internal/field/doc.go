// Package field builds the occupancy grid and artificial potential fields
// the swarm plans on.
//
//   - [BuildOccupancy]: rasterizes obstacle discs and the arena border
//   - [DistanceTransform]: exact Euclidean distance to the nearest occupied cell
//   - [NewRepulsion]: obstacle-only layer, built once per tick
//   - [Repulsion.Toward] / [Compute]: attractive paraboloid plus repulsion
//
// Grids are row-major with rows along y and columns along x, using the
// world/grid map of [geom.Frame].
//
// A field is a snapshot: it is never updated in place. Moving obstacles or
// a moving target mean building a new one.
package field
