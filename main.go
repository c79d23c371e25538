package main

import "github.com/kintai-rec/kintai/cmd"

func main() {
	cmd.Execute()
}
