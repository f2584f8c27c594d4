// Package main is the entry point for the bbmetrics CLI tool, which scrapes
// league statistics pages and computes team and matchup projections.
package main

import "github.com/pable/go-bball-metrics/cmd"

func main() {
	cmd.Execute()
}
