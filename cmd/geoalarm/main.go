package main

import "github.com/benmeehan/geo-alarm/cmd/geoalarm/cmd"

func main() {
	cmd.Execute()
}
