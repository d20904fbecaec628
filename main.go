package main

import "github.com/Beastly713/sss/cmd"

func main() {
	cmd.Execute()
}
