// Command crawler runs a polite, priority-ordered crawl restricted to .nz
// domains and writes a timestamped report of the run.
package main

func main() {
	Execute()
}
