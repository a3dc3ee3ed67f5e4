// Command tableside is the terminal client for the Tableside restaurant
// service: session management, menu browsing, cart and reservations.
package main

import "github.com/tableside/tableside/cmd/tableside/cmd"

func main() {
	cmd.Execute()
}
