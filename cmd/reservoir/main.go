// Command reservoir keeps a water reservoir filled and heated.
package main

import "github.com/sweeney/reservoir-monitor/cmd/reservoir/commands"

func main() {
	commands.Execute()
}
