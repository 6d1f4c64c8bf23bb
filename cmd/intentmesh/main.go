// Command intentmesh answers free-text requests with the built-in keyword
// router and its math, weather, datetime and research handlers.
package main

func main() {
	Execute()
}
