package main

import "github.com/mondido/hosted-checkout/cmd"

func main() {
	cmd.Execute()
}
