// Command timegrid generates university timetables from CSV catalog sources.
package main

func main() {
	Execute()
}
