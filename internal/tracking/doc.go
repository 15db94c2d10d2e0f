// Package tracking turns per-frame color detections into a smoothly moving
// 3D target position.
//
// # Pipeline
//
// Each tick runs the same fixed sequence:
//
//	frame ──► background scan (detection.Scanner.Select)
//	                │ on completion, next tick
//	                ▼
//	         update gate ──► TrackState (committed)
//	                               │ every tick
//	                               ▼
//	                         smoother ──► SmoothedState
//	                                            │
//	                                            ▼
//	                                  mapper ──► approach ──► TargetSink
//
// The scan is the only O(width×height) step. It runs on its own goroutine
// with a single-in-flight guard; smoothing and mapping run every tick on the
// latest committed values, so output motion does not stall when a scan is
// slow.
//
// # State
//
//   - TrackState changes only when Gate.Commit accepts a detection. A
//     rejected or missing detection leaves it as it was.
//   - SmoothedState is pulled toward TrackState on every tick and never jumps
//     by more than the smoothing factor allows.
//   - HasTarget reflects only the most recent scan and is diagnostic.
//
// # Time
//
// The tracker clock is the sum of the dt values passed to Tick. The debounce
// gate and the approach step both use it, which makes the tracker
// deterministic under test. Run derives dt from a timeutil.Clock.
package tracking
