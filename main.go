package main

import (
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/cmd"
)

func main() {
	cmd.Execute()
}
