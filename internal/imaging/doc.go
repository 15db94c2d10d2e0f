// Package imaging provides the frame representation consumed by the tracker.
//
// A Frame is an 8-bit RGBA snapshot of one camera image. Frames are built from
// any image.Image, decoded from disk through FrameCache, or synthesized in
// tests. All operations use a coordinate system where (0,0) is at the top-left
// corner, X increases rightward, and Y increases downward.
//
// # Thread Safety
//
// Frames are not synchronized. The tracker clones a frame before handing it to
// its background scan, so a frame source may keep writing into its own buffer.
// FrameCache is safe for concurrent use.
//
// # Preprocessing
//
// Prepare optionally downscales and blurs a snapshot before region finding.
// Both steps are off by default; when enabled, normalized detection
// coordinates are unaffected because they are divided by the prepared size.
//
// # Debug View
//
// RenderDebugView draws the tracked position over a scaled copy of a frame,
// with an optional pixel grid and a strip of numeric labels, and returns it
// as a base64 PNG for the diagnostics server.
//
// # Color Representation
//
// Swatch reports colors for diagnostics:
//   - Hex: 6-character format "#RRGGBB" (alpha excluded)
//   - RGB: 8-bit components (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
package imaging
