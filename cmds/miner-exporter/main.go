package main

import (
	"github.com/PaulVMo/miner-exporter/exporter"
)

func main() {
	exporter.CommandStart()
}
