// Catdog - checksummed backups for critical system files
package main

import (
	"github.com/catdogtool/catdog/internal/cli"
	"github.com/catdogtool/catdog/internal/logging"
)

var version = "0.1.0"

func main() {
	defer logging.Sync()

	cli.SetVersion(version)
	cli.Execute()
}
