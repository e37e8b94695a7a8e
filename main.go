package main

import "github.com/lanblog/apiserver/cmd"

func main() {
	cmd.Execute()
}
