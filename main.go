package main

import "github.com/quantfeed/blockwatch/cmd"

func main() {
	cmd.Execute()
}
