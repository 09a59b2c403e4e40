package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	"github.com/ironsheep/embroidery-core/internal/embroidery"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("embroiderctl %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	var (
		in                   = flag.String("in", "", "input image path (PNG or JPEG)")
		out                  = flag.String("out", "", "output PNG path")
		maxColors            = flag.Int("maxColors", 8, "palette size, clamped to [2,12]")
		threadThickness      = flag.Int("threadThickness", 3, "simulated thread thickness in px, clamped to [1,10]")
		preserveTransparency = flag.Bool("preserveTransparency", true, "keep the alpha channel instead of flattening onto a background")
		hatch                = flag.String("hatch", "diagonal", "none | diagonal | cross")
		styleMode            = flag.String("styleMode", "photo", "photo | logo")
		styleEdges           = flag.String("styleEdges", "canny", "canny | xdog")
		styleOrientation     = flag.String("styleOrientation", "binned-8", "binned-8 | lic")
		borderStitch         = flag.Bool("borderStitch", true, "draw a dashed rim stitch around alpha boundaries")
		densityScale         = flag.Float64("densityScale", 1.0, "stitch density multiplier, clamped to [0.5,2]")
		bgType               = flag.String("background", "", "none | color:#RRGGBB | fabric:<name>")
	)
	flag.Parse()

	if os.Getenv("EMBROIDERY_LOG_LEVEL") == "debug" {
		log.Printf("embroiderctl %s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: embroiderctl -in <path> -out <path> [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	src, err := loadImage(*in)
	if err != nil {
		log.Fatalf("failed to load %s: %v", *in, err)
	}

	raw := embroidery.RawOptions{
		MaxColors:            maxColors,
		ThreadThickness:      threadThickness,
		PreserveTransparency: preserveTransparency,
		Hatch:                hatch,
		StyleMode:            styleMode,
		StyleEdges:           styleEdges,
		StyleOrientation:     styleOrientation,
		BorderStitch:         borderStitch,
		DensityScale:         densityScale,
	}
	if bg, err := parseBackgroundFlag(*bgType); err != nil {
		log.Fatalf("invalid -background: %v", err)
	} else {
		raw.Background = bg
	}

	driver := embroidery.New()
	result, err := driver.Process(src, raw)
	if err != nil {
		log.Fatalf("stylization failed: %v", err)
	}

	png, err := result.EncodePNG()
	if err != nil {
		log.Fatalf("encode failed: %v", err)
	}
	if err := os.WriteFile(*out, png, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *out, err)
	}

	log.Printf("wrote %s (%dx%d, palette=%s)", *out, result.Meta.Width, result.Meta.Height, result.Meta.Palette.String())
	for _, w := range result.Meta.Warnings {
		log.Printf("warning: %s", w)
	}
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func parseBackgroundFlag(v string) (*embroidery.RawBackground, error) {
	if v == "" || v == "none" {
		return nil, nil
	}
	switch {
	case len(v) > 6 && v[:6] == "color:":
		hex := v[6:]
		return &embroidery.RawBackground{Type: "color", Hex: hex}, nil
	case len(v) > 7 && v[:7] == "fabric:":
		name := v[7:]
		return &embroidery.RawBackground{Type: "fabric", Name: name}, nil
	default:
		return nil, fmt.Errorf("expected color:#RRGGBB or fabric:<name>, got %q", v)
	}
}
