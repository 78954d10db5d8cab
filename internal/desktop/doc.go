// Package desktop hands samples to the user's desktop: open with the default
// player, reveal in the file manager, or copy as a file URI to the clipboard.
// Every action checks the path guard first.
package desktop
