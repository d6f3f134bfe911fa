package config

import (
	"fmt"

	"platecalc/plate"
	"platecalc/tagging"
)

type TagGroupConfig struct {
	ID   string        `yaml:"id"`
	Tags []tagging.Tag `yaml:"tags"`
}

type TagLayoutConfig struct {
	Strategy  string `yaml:"strategy"`
	Direction string `yaml:"direction"`
	Offset    int    `yaml:"offset,omitempty"`
	Group1    string `yaml:"tag_group_1,omitempty"`
	Group2    string `yaml:"tag_group_2,omitempty"`
}

// TagLayout is a tag layout with its names resolved.
type TagLayout struct {
	Strategy  tagging.Strategy
	Direction plate.Direction
	Offset    int
	Group1    *tagging.Group
	Group2    *tagging.Group
}

func (t TagLayout) Calculate(wells []tagging.Well, dims plate.Geometry) (tagging.Layout, error) {
	return tagging.CalculateLayout(wells, dims, t.Group1, t.Group2, t.Strategy, t.Direction, t.Offset)
}

func (c *Config) TagGroup(name string) (*tagging.Group, error) {
	g, ok := c.TagGroups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTagGroup, name)
	}
	id := g.ID
	if id == "" {
		id = name
	}
	return &tagging.Group{ID: id, Name: name, Tags: g.Tags}, nil
}

// TagLayout resolves the tag layout of a purpose. Strategy defaults to
// by_plate_seq and direction to by_columns.
func (c *Config) TagLayout(purpose string) (TagLayout, error) {
	p, err := c.Purpose(purpose)
	if err != nil {
		return TagLayout{}, err
	}
	if p.TagLayout == nil {
		return TagLayout{}, fmt.Errorf("%w: purpose %q has no tag_layout", ErrInvalid, purpose)
	}
	tl := p.TagLayout
	ret := TagLayout{Strategy: tagging.ByPlateSequential, Direction: plate.ByColumns, Offset: tl.Offset}
	if tl.Strategy != "" {
		if ret.Strategy, err = tagging.ParseStrategy(tl.Strategy); err != nil {
			return TagLayout{}, fmt.Errorf("purpose %q: %w", purpose, err)
		}
	}
	if tl.Direction != "" {
		if ret.Direction, err = tagging.ParseDirection(tl.Direction); err != nil {
			return TagLayout{}, fmt.Errorf("purpose %q: %w", purpose, err)
		}
	}
	if tl.Offset < 0 {
		return TagLayout{}, fmt.Errorf("purpose %q: %w: %d", purpose, tagging.ErrInvalidOffset, tl.Offset)
	}
	if tl.Group1 == "" && tl.Group2 == "" {
		return TagLayout{}, fmt.Errorf("purpose %q: %w", purpose, tagging.ErrNoTags)
	}
	if tl.Group1 != "" {
		if ret.Group1, err = c.TagGroup(tl.Group1); err != nil {
			return TagLayout{}, fmt.Errorf("purpose %q: %w", purpose, err)
		}
	}
	if tl.Group2 != "" {
		if ret.Group2, err = c.TagGroup(tl.Group2); err != nil {
			return TagLayout{}, fmt.Errorf("purpose %q: %w", purpose, err)
		}
	}
	return ret, nil
}
