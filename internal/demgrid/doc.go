// Package demgrid implements the per-frame digital elevation and
// traversability pipeline: range-image to DEM projection, local DEM
// labeling, ego-motion prediction of the persistent global DEM,
// probabilistic fusion, road-centerline extraction, planar road-surface
// sub-labeling, and obstacle sub-labeling.
//
// The seven stages run once per frame, in a fixed order, against exactly
// three grid instances (local, global, scratch) bundled by Context. See
// pipeline.go for the orchestration entry point.
package demgrid
