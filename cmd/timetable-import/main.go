package main

import "github.com/joseph-ayodele/timetable-import/cmd/timetable-import/cmd"

func main() {
	cmd.Execute()
}
