// Command docket scrapes paginated court case listings into a staging file
// and commits staged batches to a relational store.
package main

import "github.com/mesh-intelligence/docket/internal/cli"

func main() {
	cli.Execute()
}
