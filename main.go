package main

import "github.com/GooglyEyedGuru/polymarket-edge/cmd"

func main() {
	cmd.Execute()
}
