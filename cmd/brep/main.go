// Command brep evaluates modelling scripts with the B-rep kernel and
// inspects saved shells.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
