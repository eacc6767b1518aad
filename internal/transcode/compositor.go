package transcode

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

type Framing string

const (
	FramingVertical  Framing = "crop-to-vertical"
	FramingLandscape Framing = "letterbox-to-landscape"
)

const (
	VerticalWidth   = 1080
	VerticalHeight  = 1920
	LandscapeWidth  = 1920
	LandscapeHeight = 1080

	DefaultTimeout = 120 * time.Second
)

var ErrTranscodeTimeout = errors.New("transcoder timed out")

func ParseFraming(raw string) (Framing, error) {
	switch Framing(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FramingVertical, "vertical":
		return FramingVertical, nil
	case FramingLandscape, "landscape":
		return FramingLandscape, nil
	}
	return "", fmt.Errorf("unknown framing %q", raw)
}

// Filter returns the framing expression. Anything other than the landscape
// policy is treated as vertical.
func (f Framing) Filter() string {
	if f == FramingLandscape {
		return fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
			LandscapeWidth, LandscapeHeight, LandscapeWidth, LandscapeHeight,
		)
	}
	return fmt.Sprintf("crop=ih*9/16:ih,scale=%d:%d,setsar=1", VerticalWidth, VerticalHeight)
}

// BuildFilterChain applies framing first and the effect fragment second.
func BuildFilterChain(framing Framing, effectFragment string) string {
	chain := framing.Filter()
	if fragment := strings.Trim(strings.TrimSpace(effectFragment), ","); fragment != "" {
		chain += "," + fragment
	}
	return chain
}

type ClipRequest struct {
	Source      string
	StartOffset float64
	Duration    float64
	Effect      string
	Framing     Framing
	OutputPath  string
}

type RenderResult struct {
	OutputPath  string
	FilterChain string
	Args        []string
	Elapsed     time.Duration
}

// TranscodeError is returned when the transcoder exits nonzero. Stderr holds
// its diagnostic output for the operator.
type TranscodeError struct {
	Err    error
	Stderr string
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcoder failed: %v", e.Err)
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}

type Compositor struct {
	binary  string
	timeout time.Duration
	effects Effects
	runner  Runner
}

func NewCompositor(binary string, timeout time.Duration, effects Effects, runner Runner) *Compositor {
	if binary == "" {
		binary = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if effects == nil {
		effects = DefaultEffects()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Compositor{binary: binary, timeout: timeout, effects: effects, runner: runner}
}

func (c *Compositor) Effects() Effects {
	return c.effects
}

func (c *Compositor) FilterChain(req ClipRequest) string {
	return BuildFilterChain(req.Framing, c.effects.Lookup(req.Effect))
}

// Args builds the transcoder argument list. The time window is passed through
// as given; the transcoder reports invalid windows itself.
func (c *Compositor) Args(req ClipRequest) []string {
	return []string{
		"-y",
		"-ss", formatSeconds(req.StartOffset),
		"-t", formatSeconds(req.Duration),
		"-i", NormalizeSource(req.Source),
		"-vf", c.FilterChain(req),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-movflags", "+faststart",
		req.OutputPath,
	}
}

// RenderClip runs the transcoder once and blocks until it exits or the timeout
// elapses. Partial output is left in place on failure.
func (c *Compositor) RenderClip(ctx context.Context, req ClipRequest) (*RenderResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := c.Args(req)
	result := &RenderResult{
		OutputPath:  req.OutputPath,
		FilterChain: c.FilterChain(req),
		Args:        args,
	}

	log.Printf("[render] %s %s", c.binary, strings.Join(args, " "))

	started := time.Now()
	stderr, err := c.runner.Run(ctx, c.binary, args)
	result.Elapsed = time.Since(started)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("%w after %s", ErrTranscodeTimeout, c.timeout)
		}
		return result, &TranscodeError{Err: err, Stderr: string(stderr)}
	}

	return result, nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
