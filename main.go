package main

import "github.com/hmans/posts/cmd"

func main() {
	cmd.Execute()
}
