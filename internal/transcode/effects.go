package transcode

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const EffectNone = "None"

// Effects maps an effect name to the filter fragment appended after framing.
// An empty fragment is the identity transform.
type Effects map[string]string

func DefaultEffects() Effects {
	return Effects{
		EffectNone:      "",
		"Night Vision":  "colorchannelmixer=.3:.4:.3:0:.3:.4:.3:0:.3:.4:.3,colorbalance=gm=.4:gh=.3,noise=alls=25:allf=t+u",
		"CCTV":          "hue=s=0,curves=preset=increase_contrast,noise=alls=30:allf=t,vignette=PI/5",
		"Haunted":       "hue=h=200:s=0.6,eq=brightness=-0.08:contrast=1.2,vignette=PI/4",
		"Vintage":       "curves=preset=vintage,noise=alls=10:allf=t",
		"Black & White": "hue=s=0",
		"Glitch":        "rgbashift=rh=-6:bh=6,noise=alls=15:allf=t",
		"Mirror":        "hflip",
		"Slow Zoom":     "zoompan=z='min(zoom+0.0015,1.5)':d=1:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)'",
	}
}

// Lookup returns the fragment for name, falling back to the identity transform
// for names that are not registered.
func (e Effects) Lookup(name string) string {
	if fragment, ok := e[name]; ok {
		return fragment
	}
	return ""
}

func (e Effects) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type effectsFile struct {
	Effects map[string]string `yaml:"effects"`
}

// LoadEffects returns the built-in registry extended (or overridden) by the
// entries of the YAML file at path. An empty path yields the defaults.
func LoadEffects(path string) (Effects, error) {
	effects := DefaultEffects()
	if path == "" {
		return effects, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read effects file: %w", err)
	}

	var file effectsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse effects file: %w", err)
	}

	for name, fragment := range file.Effects {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		effects[name] = strings.TrimSpace(fragment)
	}
	return effects, nil
}
