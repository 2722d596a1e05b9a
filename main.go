package main

import (
	"github.com/goldfinchbio/aws-gatk-sv/cmd/cli"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/version"
)

func main() {
	cli.Execute(version.Get())
}
