package main

import "facedetect/cmd"

func main() {
	cmd.Execute()
}
