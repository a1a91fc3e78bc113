// Package timeline models storyboard scenes and computes their lengths in
// video frames.
//
// Scenes are a closed set of variants (title, content, call to action). A
// scene with packaged narration audio lasts as long as its audio plus a fixed
// padding; a silent scene falls back to a per-kind default. Adjacent scenes
// cross-fade, so the composition total subtracts one transition per scene
// boundary. Calculator bundles the frame rate, defaults, and per-format
// transitions that callers load from configuration.
package timeline
