package main

import "github.com/javanhut/gitlet/cli"

func main() {
	cli.Execute()
}
