package main

import "collegeoffice_go/cmd"

func main() {
	cmd.Execute()
}
