package main

import "github.com/synoplex/plex-updater/cmd/plex-updater/cmd"

func main() {
	cmd.Execute()
}
