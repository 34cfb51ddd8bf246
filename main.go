package main

import "careertrail/canopy/cmd"

func main() {
	cmd.Execute()
}
