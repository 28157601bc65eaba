// Package app provides the Bubble Tea application model for aerun.
//
// Model is the presentation shell: it holds the project, composition and
// output fields, the render log and the dialogs, and wires user actions to
// the composition lister, the render invoker and the config store. Listing
// and rendering run as commands off the UI loop; render output reaches the
// model only as messages, so every UI mutation happens in Update.
package app
