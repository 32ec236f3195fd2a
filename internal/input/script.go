package input

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/simcore/internal/component"
)

// Script is a Poller that replays a fixed list of polls, then repeats the
// last one. The headless driver loads one from [input] script; tests build
// them inline.
type Script struct {
	polls []component.RawInput
	next  int
}

func NewScript(polls ...component.RawInput) *Script { return &Script{polls: polls} }

func (s *Script) Poll() component.RawInput {
	if len(s.polls) == 0 {
		return component.RawInput{}
	}
	p := s.polls[min(s.next, len(s.polls)-1)]
	s.next++
	return p
}

// Len returns the number of recorded polls.
func (s *Script) Len() int { return len(s.polls) }

type scriptFile struct {
	Polls []struct {
		Down    []string   `yaml:"down"`
		Pointer [2]float64 `yaml:"pointer"`
		Repeat  int        `yaml:"repeat"` // extra frames to hold this poll
	} `yaml:"polls"`
}

// LoadScript reads a YAML list of polls.
func LoadScript(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input script %s: %w", path, err)
	}
	s, err := parseScript(raw)
	if err != nil {
		return nil, fmt.Errorf("input script %s: %w", path, err)
	}
	return s, nil
}

func parseScript(raw []byte) (*Script, error) {
	var f scriptFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	var polls []component.RawInput
	for i, p := range f.Polls {
		if p.Repeat < 0 {
			return nil, fmt.Errorf("poll %d: negative repeat %d", i, p.Repeat)
		}
		in := component.RawInput{Pointer: p.Pointer}
		if len(p.Down) > 0 {
			in.Down = make(map[string]bool, len(p.Down))
			for _, c := range p.Down {
				in.Down[c] = true
			}
		}
		for n := 0; n <= p.Repeat; n++ {
			polls = append(polls, in)
		}
	}
	return NewScript(polls...), nil
}
