// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/ormconf/ormconf/cmd/ormconf"

func main() {
	cmd.Execute()
}
