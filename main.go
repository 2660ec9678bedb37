//go:build !(js && wasm)

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/voxelsplace/ppmconv/utils"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ppmconv <command> [args]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert --input IN --output OUT [--format P3|P6] [--max N] [--gray] [--quality Q]")
	fmt.Fprintln(w, "      convert between .ppm (.ppm.gz, .ppm.zst) and .png/.jpg/.bmp/.tiff/.gif/.webp, or .ppm -> .glb")
	fmt.Fprintln(w, "      --format is required when the output is .ppm")
	fmt.Fprintln(w, "  batch --outdir DIR --to EXT [--format P3|P6] [--workers N] [--metrics FILE] FILES...")
	fmt.Fprintln(w, "      convert many files in parallel")
	fmt.Fprintln(w, "  info FILE.ppm")
	fmt.Fprintln(w, "      print the header and pixel checksum of a PPM file")
}

func convertFlags(fs *flag.FlagSet, o *utils.ConvertOptions) {
	fs.StringVar(&o.Format, "format", "", "PPM output format: P3 (ASCII) or P6 (binary)")
	fs.IntVar(&o.MaxDimension, "max", 0, "shrink to fit an N x N box (0 keeps the size)")
	fs.BoolVar(&o.Grayscale, "gray", false, "desaturate the image")
	fs.IntVar(&o.JPEGQuality, "quality", 90, "JPEG quality 1-100")
}

// run executes one command and returns the process exit code: 0 on success,
// 1 when the command failed and 2 on a usage error.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}

	var err error
	switch args[0] {
	case "convert":
		fs := flag.NewFlagSet("convert", flag.ContinueOnError)
		fs.SetOutput(stderr)
		var input, output string
		fs.StringVar(&input, "input", "", "input file")
		fs.StringVar(&output, "output", "", "output file")
		o := utils.ConvertOptions{Out: stdout}
		convertFlags(fs, &o)
		if fs.Parse(args[1:]) != nil || input == "" || output == "" || fs.NArg() != 0 {
			usage(stderr)
			return 2
		}
		err = utils.RunConvert(input, output, o)
	case "batch":
		fs := flag.NewFlagSet("batch", flag.ContinueOnError)
		fs.SetOutput(stderr)
		var outDir, to string
		fs.StringVar(&outDir, "outdir", "", "output directory")
		fs.StringVar(&to, "to", "", "output extension (ppm, png, jpg, ...)")
		o := utils.BatchOptions{ConvertOptions: utils.ConvertOptions{Out: stdout}}
		convertFlags(fs, &o.ConvertOptions)
		fs.IntVar(&o.Workers, "workers", 0, "concurrent conversions (0 = number of CPUs)")
		fs.StringVar(&o.MetricsFile, "metrics", "", "write Prometheus metrics to this file")
		if fs.Parse(args[1:]) != nil || outDir == "" || to == "" || fs.NArg() == 0 {
			usage(stderr)
			return 2
		}
		f, ok := utils.ParseFormat(to)
		if !ok {
			err = fmt.Errorf("unknown output format %q", to)
			break
		}
		err = utils.RunBatch(fs.Args(), outDir, f, o)
	case "info":
		if len(args) != 2 {
			usage(stderr)
			return 2
		}
		err = utils.RunInfo(args[1], stdout)
	default:
		usage(stderr)
		return 2
	}

	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
