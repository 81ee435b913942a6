package main

import "github.com/narasux/vidvote/cmd"

func main() {
	cmd.Execute()
}
