package main

import "github.com/yomorun/saslframe/cli"

func main() {
	cli.Execute()
}
