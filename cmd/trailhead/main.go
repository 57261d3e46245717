// Command trailhead runs the starter web app,
// gating every request before it is routed.
package main

import (
	"fmt"
	"os"

	"github.com/xy-planning-network/trailhead/outpost"
)

func main() {
	o, err := outpost.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not start trailhead: %s\n", err)
		os.Exit(1)
	}

	if err := o.Guide(); err != nil {
		o.Logger().Error(err.Error(), nil)
		os.Exit(1)
	}
}
