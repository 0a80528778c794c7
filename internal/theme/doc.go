// Package theme loads the island's CSS. Themes are looked up in
// ~/.config/gitisland/themes/ first and then among the bundled ones; user
// themes are reloaded when their file changes.
package theme
