package main

/*------------------------------------------------------------------
 *
 * Purpose:	List and inspect named scale presets, either the
 *		built-in bank or one loaded from a YAML file - a
 *		convenience for building a host's scale picker without
 *		having to remember twelve-bit masks by hand.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/go-retune/retuner/internal/presets"
)

func main() {
	var (
		bankPath = pflag.StringP("bank", "b", "", "Path to a YAML preset bank. Empty uses the built-in bank.")
		help     = pflag.Bool("help", false, "Display help text.")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - list or inspect scale presets\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [name]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	bank := presets.DefaultBank()
	if *bankPath != "" {
		loaded, err := presets.LoadBank(*bankPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		bank = loaded
	}

	if pflag.NArg() == 0 {
		for _, name := range bank.Names() {
			mask, _ := bank.Lookup(name)
			fmt.Printf("%-20s %03X\n", name, mask)
		}
		return
	}

	name := pflag.Arg(0)
	mask, ok := bank.Lookup(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "no such preset: %s\n", name)
		os.Exit(1)
	}
	fmt.Printf("%03X\n", mask)
}
