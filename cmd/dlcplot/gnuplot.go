//go:build gnuplot

package main

// Links the gnuplot renderer; build with -tags gnuplot on hosts that have it.
import _ "github.com/PluPludevil/DLC-Plot/internal/figure/gnuplot"
