package embroidery

import "fmt"

// BackgroundKind selects what, if anything, the output is composited over
// when PreserveTransparency is false.
type BackgroundKind int

const (
	BackgroundNone BackgroundKind = iota
	BackgroundColor
	BackgroundFabric
)

// Background mirrors the {type, hex|name} option record of spec.md §6.
type Background struct {
	Kind BackgroundKind
	Hex  string // for BackgroundColor
	Name string // for BackgroundFabric
}

// defaultFabricColor is used whenever a requested fabric asset is missing,
// recovering the AssetMissing condition silently per spec.md §7.
const defaultFabricColor = "#E5E0D6"

// Options is the fully typed, defaulted, clamped request record every
// downstream stage receives. It is built once at the Process boundary from
// a free-form request (see RawOptions/ParseOptions) and never re-validated
// downstream, mirroring the teacher's per-tool argument structs in
// internal/server/handlers.go.
type Options struct {
	MaxColors            int
	ThreadThickness      int
	PreserveTransparency bool
	Hatch                string // "none" | "diagonal" | "cross"
	Background           *Background
	StyleOrientation     string // "binned-8" | "lic"
	StyleEdges           string // "canny" | "xdog" (xdog is an accepted alias, see ParseOptions)
	StyleMode            string // "photo" | "logo"
	LightingSheen        float64
	BorderStitch         bool
	BorderWidth          int
	DensityScale         float64
	GrainRandomness      float64
}

// RawBackground is the free-form {type, hex|name} shape accepted at the
// boundary before it is parsed into a Background.
type RawBackground struct {
	Type string `json:"type"`
	Hex  string `json:"hex,omitempty"`
	Name string `json:"name,omitempty"`
}

// RawOptions is the free-form option blob accepted by Process, with every
// field optional. Defaults and clamps are applied by ParseOptions.
type RawOptions struct {
	MaxColors            *int           `json:"maxColors,omitempty"`
	ThreadThickness      *int           `json:"threadThickness,omitempty"`
	PreserveTransparency *bool          `json:"preserveTransparency,omitempty"`
	Hatch                *string        `json:"hatch,omitempty"`
	Background           *RawBackground `json:"background,omitempty"`
	StyleOrientation     *string        `json:"style.orientation,omitempty"`
	StyleEdges           *string        `json:"style.edges,omitempty"`
	StyleMode            *string        `json:"style.mode,omitempty"`
	LightingSheen        *float64       `json:"lighting.sheen,omitempty"`
	BorderStitch         *bool          `json:"border.stitch,omitempty"`
	BorderWidth          *int           `json:"border.width,omitempty"`
	DensityScale         *float64       `json:"density.scale,omitempty"`
	GrainRandomness      *float64       `json:"grain.randomness,omitempty"`
}

// ParseOptions applies spec.md §6's defaults and clamps and validates the
// enum fields, returning an *Error with Kind UnsupportedOption for any
// unrecognized enum value.
func ParseOptions(raw RawOptions) (Options, error) {
	opts := Options{
		MaxColors:            8,
		ThreadThickness:      3,
		PreserveTransparency: true,
		Hatch:                "diagonal",
		Background:           nil,
		StyleOrientation:     "binned-8",
		StyleEdges:           "canny",
		StyleMode:            "photo",
		LightingSheen:        0.25,
		BorderStitch:         true,
		BorderWidth:          3,
		DensityScale:         1.0,
		GrainRandomness:      0.15,
	}

	if raw.MaxColors != nil {
		opts.MaxColors = clampInt(*raw.MaxColors, 2, 12)
	}
	if raw.ThreadThickness != nil {
		opts.ThreadThickness = clampInt(*raw.ThreadThickness, 1, 10)
	}
	opts.BorderWidth = opts.ThreadThickness
	if raw.PreserveTransparency != nil {
		opts.PreserveTransparency = *raw.PreserveTransparency
	}
	if raw.Hatch != nil {
		switch *raw.Hatch {
		case "none", "diagonal", "cross":
			opts.Hatch = *raw.Hatch
		default:
			return Options{}, newError(UnsupportedOption, "options", fmt.Sprintf("unknown hatch %q", *raw.Hatch), nil)
		}
	}
	if raw.Background != nil {
		bg, err := parseBackground(*raw.Background)
		if err != nil {
			return Options{}, err
		}
		opts.Background = bg
	}
	if raw.StyleOrientation != nil {
		switch *raw.StyleOrientation {
		case "binned-8", "lic":
			opts.StyleOrientation = *raw.StyleOrientation
		default:
			return Options{}, newError(UnsupportedOption, "options", fmt.Sprintf("unknown style.orientation %q", *raw.StyleOrientation), nil)
		}
	}
	if raw.StyleEdges != nil {
		switch *raw.StyleEdges {
		// "xdog" is accepted but not distinguished from "canny" downstream:
		// edges.Detect always runs the thresholded-Sobel pipeline regardless
		// of which name was requested, the same way orientation.LIC only
		// changes bin count rather than running flow-line integration.
		case "canny", "xdog":
			opts.StyleEdges = *raw.StyleEdges
		default:
			return Options{}, newError(UnsupportedOption, "options", fmt.Sprintf("unknown style.edges %q", *raw.StyleEdges), nil)
		}
	}
	if raw.StyleMode != nil {
		switch *raw.StyleMode {
		case "photo", "logo":
			opts.StyleMode = *raw.StyleMode
		default:
			return Options{}, newError(UnsupportedOption, "options", fmt.Sprintf("unknown style.mode %q", *raw.StyleMode), nil)
		}
	}
	if raw.LightingSheen != nil {
		opts.LightingSheen = clampFloat(*raw.LightingSheen, 0, 1)
	}
	if raw.BorderStitch != nil {
		opts.BorderStitch = *raw.BorderStitch
	}
	if raw.BorderWidth != nil {
		opts.BorderWidth = clampInt(*raw.BorderWidth, 1, 10)
	}
	if raw.DensityScale != nil {
		opts.DensityScale = clampFloat(*raw.DensityScale, 0.5, 2)
	}
	if raw.GrainRandomness != nil {
		opts.GrainRandomness = clampFloat(*raw.GrainRandomness, 0, 1)
	}

	return opts, nil
}

func parseBackground(raw RawBackground) (*Background, error) {
	switch raw.Type {
	case "color":
		return &Background{Kind: BackgroundColor, Hex: raw.Hex}, nil
	case "fabric":
		return &Background{Kind: BackgroundFabric, Name: raw.Name}, nil
	default:
		return nil, newError(UnsupportedOption, "options", fmt.Sprintf("unknown background type %q", raw.Type), nil)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
