// Package detection finds colored blobs in camera frames.
//
// The package is the per-frame half of the tracker: it classifies pixels,
// groups matching pixels into connected regions, and picks the one region
// that should drive the tracked target.
//
// # Pipeline
//
//  1. Classification: Classify tests one pixel against one tracking color
//     using a bright-dominant test and a dark-saturated test.
//  2. Region finding: Scanner.Scan flood-fills 4-connected runs of matching
//     pixels, sharing one visited bitmap across all colors of a pass.
//  3. Selection: Scanner.Select keeps the strictly largest region across the
//     scanned colors and applies the minimum-area floor.
//
// # Coordinate System
//
// Region centroids are reported in pixels, origin top-left, X rightward and Y
// downward. Detection.Position divides by the frame width and height and is
// clamped to [0,1].
//
// # Tie Breaking
//
// In Auto mode colors are scanned Red, Green, Blue. Equal-area regions keep
// the earlier color, which makes selection deterministic for a fixed frame.
//
// # Performance
//
// A full Auto pass classifies each pixel at most three times and enqueues each
// pixel at most once. Scanner reuses its buffers between passes.
package detection
