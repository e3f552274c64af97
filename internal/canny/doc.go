// Package canny implements a derivative-of-Gaussian edge detector.
//
// The pipeline runs in five stages, each a pure function over rasters:
//
//  1. Kernel synthesis: SynthesizeKernels builds the pair of k×k
//     derivative-of-Gaussian kernels (Gx, Gy) for a size and sigma.
//
//  2. Convolution: a Convolver correlates the normalised intensity raster
//     with each kernel. Correlator is the pure-Go implementation; its
//     Border field fixes the out-of-bounds sampling policy (zero padding by
//     default).
//
//  3. Edge vectors: BuildEdges combines the two responses into a raster of
//     Edge values. Both components are scaled by 1/√2 before the magnitude
//     is taken, and the direction is the unit vector of the scaled pair.
//
//  4. Non-maximum suppression: Suppress zeroes every edge that has a
//     strictly stronger neighbour along its quantised gradient direction.
//
//  5. Hysteresis: Threshold classifies each pixel as Strong, Weak or Null,
//     then Promote makes one pass over that snapshot, promoting a Weak
//     pixel to Strong when a Strong pixel lies in its window and demoting
//     it to Null otherwise. Classify runs both.
//
// Detector wires the stages together and records per-stage statistics.
//
// # Neighbour lookups
//
// Suppress and Promote address neighbours by flattened index and only
// check that the index falls in [0, width*height). A neighbour offset can
// therefore wrap across a row boundary and land on a pixel of the adjacent
// row. This is the reference behaviour; WithStrictBounds switches both
// stages to a per-axis row/column check instead.
//
// # Concurrency
//
// Every stage reads only its input raster and writes disjoint output cells,
// so each stage is split across goroutines by contiguous index ranges and
// joined before returning. Rasters passed in are never modified.
package canny
