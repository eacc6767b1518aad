package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls  int
	name   string
	args   []string
	stderr []byte
	err    error
	block  bool
}

func (f *fakeRunner) Run(ctx context.Context, name string, args []string) ([]byte, error) {
	f.calls++
	f.name = name
	f.args = args
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.stderr, f.err
}

func argValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}

func TestBuildFilterChainFramingFirst(t *testing.T) {
	chain := BuildFilterChain(FramingVertical, "hflip")
	require.Equal(t, "crop=ih*9/16:ih,scale=1080:1920,setsar=1,hflip", chain)

	chain = BuildFilterChain(FramingLandscape, "hue=s=0")
	require.True(t, strings.HasPrefix(chain, "scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080"))
	require.True(t, strings.HasSuffix(chain, ",hue=s=0"))
}

func TestBuildFilterChainIdentityEffect(t *testing.T) {
	require.Equal(t, FramingVertical.Filter(), BuildFilterChain(FramingVertical, ""))
	require.Equal(t, FramingVertical.Filter(), BuildFilterChain(FramingVertical, "  "))
}

func TestFilterChainDeterministic(t *testing.T) {
	c := NewCompositor("ffmpeg", 0, nil, &fakeRunner{})
	req := ClipRequest{Source: "in.mp4", StartOffset: 3, Duration: 7, Effect: "CCTV", Framing: FramingLandscape, OutputPath: "out.mp4"}

	require.Equal(t, c.FilterChain(req), c.FilterChain(req))
	require.Equal(t, c.Args(req), c.Args(req))
}

func TestFilterChainFramingExclusive(t *testing.T) {
	c := NewCompositor("ffmpeg", 0, nil, &fakeRunner{})
	vertical := "crop=ih*9/16:ih"
	landscape := "force_original_aspect_ratio=decrease"

	for _, effect := range c.Effects().Names() {
		for _, framing := range []Framing{FramingVertical, FramingLandscape} {
			chain := c.FilterChain(ClipRequest{Effect: effect, Framing: framing})
			hasVertical := strings.Contains(chain, vertical)
			hasLandscape := strings.Contains(chain, landscape)
			require.True(t, hasVertical != hasLandscape, "effect %q framing %q: %s", effect, framing, chain)
			require.Equal(t, framing == FramingVertical, hasVertical)
		}
	}
}

func TestUnknownEffectFallsBackToIdentity(t *testing.T) {
	c := NewCompositor("ffmpeg", 0, nil, &fakeRunner{})
	chain := c.FilterChain(ClipRequest{Effect: "Does Not Exist", Framing: FramingVertical})
	require.Equal(t, FramingVertical.Filter(), chain)
}

func TestRenderClipEndToEndArgs(t *testing.T) {
	runner := &fakeRunner{}
	c := NewCompositor("ffmpeg", 0, nil, runner)

	result, err := c.RenderClip(context.Background(), ClipRequest{
		Source:      "https://cdn.example.com/source-60s.mp4",
		StartOffset: 10,
		Duration:    15,
		Effect:      EffectNone,
		Framing:     FramingVertical,
		OutputPath:  "/tmp/clip.mp4",
	})
	require.NoError(t, err)
	require.Equal(t, 1, runner.calls)
	require.Equal(t, "ffmpeg", runner.name)

	joined := strings.Join(runner.args, " ")
	require.Contains(t, joined, "-ss 10 -t 15")
	require.Equal(t, "crop=ih*9/16:ih,scale=1080:1920,setsar=1", argValue(t, runner.args, "-vf"))
	require.Equal(t, "/tmp/clip.mp4", runner.args[len(runner.args)-1])
	require.Equal(t, "yuv420p", argValue(t, runner.args, "-pix_fmt"))
	require.Equal(t, result.FilterChain, argValue(t, runner.args, "-vf"))
}

func TestRenderClipFractionalWindow(t *testing.T) {
	runner := &fakeRunner{}
	c := NewCompositor("ffmpeg", 0, nil, runner)

	_, err := c.RenderClip(context.Background(), ClipRequest{Source: "a.mp4", StartOffset: 2.5, Duration: 0.75, OutputPath: "b.mp4"})
	require.NoError(t, err)
	require.Equal(t, "2.5", argValue(t, runner.args, "-ss"))
	require.Equal(t, "0.75", argValue(t, runner.args, "-t"))
}

func TestRenderClipNormalizesSource(t *testing.T) {
	runner := &fakeRunner{}
	c := NewCompositor("ffmpeg", 0, nil, runner)

	_, err := c.RenderClip(context.Background(), ClipRequest{
		Source:     "https://drive.google.com/file/d/abc123/view?usp=sharing",
		Duration:   5,
		OutputPath: "out.mp4",
	})
	require.NoError(t, err)
	require.Equal(t, "https://drive.google.com/uc?export=download&id=abc123", argValue(t, runner.args, "-i"))
}

func TestRenderClipFailureCarriesStderr(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), stderr: []byte("Invalid duration specification for t: -5")}
	c := NewCompositor("ffmpeg", 0, nil, runner)

	_, err := c.RenderClip(context.Background(), ClipRequest{Source: "a.mp4", StartOffset: 10, Duration: -5, OutputPath: "b.mp4"})
	require.Error(t, err)

	var terr *TranscodeError
	require.True(t, errors.As(err, &terr))
	require.Contains(t, terr.Stderr, "Invalid duration")
	require.Equal(t, 1, runner.calls)
	require.Equal(t, "-5", argValue(t, runner.args, "-t"))
}

func TestRenderClipTimeout(t *testing.T) {
	runner := &fakeRunner{block: true}
	c := NewCompositor("ffmpeg", 20*time.Millisecond, nil, runner)

	_, err := c.RenderClip(context.Background(), ClipRequest{Source: "a.mp4", Duration: 5, OutputPath: "b.mp4"})
	require.ErrorIs(t, err, ErrTranscodeTimeout)
	require.Equal(t, 1, runner.calls)
}

func TestParseFraming(t *testing.T) {
	f, err := ParseFraming("letterbox-to-landscape")
	require.NoError(t, err)
	require.Equal(t, FramingLandscape, f)

	f, err = ParseFraming("")
	require.NoError(t, err)
	require.Equal(t, FramingVertical, f)

	_, err = ParseFraming("square")
	require.Error(t, err)
}

func TestNormalizeSource(t *testing.T) {
	cases := map[string]string{
		"https://drive.google.com/file/d/XYZ/view?usp=sharing": "https://drive.google.com/uc?export=download&id=XYZ",
		"https://drive.google.com/open?id=XYZ":                 "https://drive.google.com/uc?export=download&id=XYZ",
		"https://www.dropbox.com/s/abc/clip.mp4?dl=0":          "https://www.dropbox.com/s/abc/clip.mp4?dl=1",
		"https://cdn.example.com/clip.mp4":                     "https://cdn.example.com/clip.mp4",
		"/var/media/clip.mp4":                                  "/var/media/clip.mp4",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizeSource(in), in)
	}
}

func TestLoadEffectsExtendsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effects.yaml")
	content := "effects:\n  Sepia: \"colorchannelmixer=.393:.769:.189:0:.349:.686:.168:0:.272:.534:.131\"\n  Mirror: \"vflip\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	effects, err := LoadEffects(path)
	require.NoError(t, err)
	require.Contains(t, effects.Lookup("Sepia"), "colorchannelmixer")
	require.Equal(t, "vflip", effects.Lookup("Mirror"))
	require.Equal(t, "", effects.Lookup(EffectNone))
}

func TestLoadEffectsMissingFile(t *testing.T) {
	_, err := LoadEffects(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
