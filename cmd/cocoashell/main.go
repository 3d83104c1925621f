// Command cocoashell is an interactive console for the command engine
package main

import "os"

func main() {
	os.Exit(execute())
}
