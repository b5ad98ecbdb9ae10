// Command checkout is a terminal front end for the membership checkout. It
// drives the same form controller a browser page would.
package main

func main() {
	Execute()
}
