package main

import "github.com/quixio/tributary/cmd/tributary"

func main() {
	tributary.Execute()
}
