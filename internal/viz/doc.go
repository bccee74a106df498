// Package viz replays finished simulations in the terminal.
//
// The package builds on the Bubble Tea framework:
//
//   - [Player]: playback model over a recorded displacement history
//   - [Canvas]: Braille pixel canvas the frames are drawn on
//
// Bodies appear as filled blocks positioned by their absolute
// displacement, one row per body; with the full animation style the
// coupling lines and motion trails are drawn too.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from the first frame
//	[ ]   - Scrub backward/forward one frame
//	G     - Toggle GIF recording
//	Q     - Quit
//
// # Recording
//
// With a target path configured, the G key starts and stops GIF
// recording; stopping writes the animation to that path.
package viz
