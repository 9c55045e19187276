package main

import "github.com/yf-2009/veribuy/cmd"

func main() {
	cmd.Execute()
}
