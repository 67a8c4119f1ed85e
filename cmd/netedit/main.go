package main

import "boardedit/cmd/netedit/cmd"

func main() {
	cmd.Execute()
}
