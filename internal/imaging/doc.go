// Package imaging moves pixels between image files and the edge pipeline.
//
// It decodes images from disk (with caching), converts them to normalised
// intensity rasters for the canny package, and renders every pipeline stage
// back to 8-bit images encoded as PNG for transport.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel), the raster column
//   - Y: vertical position (0 = topmost pixel), the raster row
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Sample Conversion
//
// Images enter the pipeline as luminance divided by 255 and leave it as
// round(v*255) saturated to [0, 255]. Classification images use 255 for
// strong edges, 32 for weak edges and 0 elsewhere.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The conversion and render
// functions are stateless and can be called concurrently.
package imaging
