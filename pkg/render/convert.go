package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/matzehuels/listtree/pkg/errors"
)

// converter is the external SVG conversion tool.
var converter = "rsvg-convert"

const installHint = "requires librsvg (brew install librsvg, apt install librsvg2-bin)"

// Available reports whether SVG conversion is possible on this machine.
func Available() bool {
	_, err := exec.LookPath(converter)
	return err == nil
}

// ToPDF converts an SVG diagram to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts an SVG diagram to PNG. A scale of 2 doubles the resolution.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return convert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func convert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if !Available() {
		return nil, errors.New(errors.ErrCodeUnsupported, "%s output %s", format, installHint)
	}

	cmd := exec.CommandContext(ctx, converter, append([]string{"-f", format}, extraArgs...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", converter, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
