// Package view provides the view transform pipeline for the compose
// rendering subsystem.
//
// The pipeline is responsible for:
//   - Building the per-frame token stream from a read-only source slice
//   - Applying externally submitted view transforms, guarded by
//     generation ids so stale submissions are dropped, never merged
//   - Applying mode stages (soft-break folding, column guides) and
//     registered external stages in a fixed order
//   - Width-aware wrapping and margin centering into display lines
//   - Maintaining the bidirectional view-position <-> source-byte
//     mapping through every stage
//
// Architecture:
//
//	Source ingest -> [external Stage]* -> Layout -> DisplayLines + Mapping
//	                        ^
//	                  View State Store (mode, hints, last transform)
//
// Rendering is derived, never stored: a stream lives for one frame.
// On any stage rejection the previous stream is kept, so there is no
// condition under which the pipeline renders nothing.
package view
