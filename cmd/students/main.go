// Command students manages student records from the terminal.
//
//	students --config=config/local.yaml add --id SV1 --name "An Nguyen" \
//	    --birthday 2000-01-01 --hometown Hue --address Hanoi --age 20
//	students list
//	students search an
//	students edit SV1 --name "An Tran"
//	students delete SV1
//
// It reads the same config file as the HTTP server, so both front-ends
// see the same snapshot.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
