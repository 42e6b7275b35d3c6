package main

import "github.com/mselser95/auctionflow/cmd"

func main() {
	cmd.Execute()
}
