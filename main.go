package main

import "github.com/W-Mai/simple-compose/cmd"

func main() {
	cmd.Execute()
}
