// Package main is the gitisland command: the notch island itself plus the
// commands that control and inspect a running island.
package main

func main() {
	Execute()
}
