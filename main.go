/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/soehlert/tunedisplay/cmd"

func main() {
	cmd.Execute()
}
