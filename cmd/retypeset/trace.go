package main

import (
	"fmt"
	"os"

	"github.com/delaneyj/retypeset/dom"
	"gopkg.in/yaml.v3"
)

type nodeSpec struct {
	Tag      string            `yaml:"tag"`
	Text     string            `yaml:"text"`
	Name     string            `yaml:"name"`
	Attrs    map[string]string `yaml:"attrs"`
	Children []nodeSpec        `yaml:"children"`
}

type step struct {
	Op     string    `yaml:"op"`
	Parent string    `yaml:"parent"`
	Before string    `yaml:"before"`
	Target string    `yaml:"target"`
	Text   string    `yaml:"text"`
	Name   string    `yaml:"name"`
	Value  string    `yaml:"value"`
	Node   *nodeSpec `yaml:"node"`
}

type trace struct {
	Document []nodeSpec `yaml:"document"`
	Steps    []step     `yaml:"steps"`
}

func loadTrace(path string) (*trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t := &trace{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// names maps trace node names to live nodes; "body" is predefined.
type names map[string]*dom.Node

func (ns names) lookup(name string) (*dom.Node, error) {
	n, ok := ns[name]
	if !ok {
		return nil, fmt.Errorf("unknown node %q", name)
	}
	return n, nil
}

func (ns names) build(doc *dom.Document, spec nodeSpec) (*dom.Node, error) {
	var n *dom.Node
	if spec.Tag == "" {
		n = doc.CreateText(spec.Text)
	} else {
		n = doc.CreateElement(spec.Tag)
		for k, v := range spec.Attrs {
			if err := n.SetAttribute(k, v); err != nil {
				return nil, err
			}
		}
		if spec.Text != "" {
			if err := n.AppendChild(doc.CreateText(spec.Text)); err != nil {
				return nil, err
			}
		}
		for _, c := range spec.Children {
			child, err := ns.build(doc, c)
			if err != nil {
				return nil, err
			}
			if err := n.AppendChild(child); err != nil {
				return nil, err
			}
		}
	}
	if spec.Name != "" {
		if _, dup := ns[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate node name %q", spec.Name)
		}
		ns[spec.Name] = n
	}
	return n, nil
}

// apply performs one mutating step. flush and wait are handled by the caller.
func (ns names) apply(doc *dom.Document, s step) error {
	switch s.Op {
	case "append", "insert":
		parent, err := ns.lookup(s.Parent)
		if err != nil {
			return err
		}
		if s.Node == nil {
			return fmt.Errorf("%s needs a node", s.Op)
		}
		n, err := ns.build(doc, *s.Node)
		if err != nil {
			return err
		}
		var before *dom.Node
		if s.Before != "" {
			if before, err = ns.lookup(s.Before); err != nil {
				return err
			}
		}
		return parent.InsertBefore(n, before)
	case "move":
		parent, err := ns.lookup(s.Parent)
		if err != nil {
			return err
		}
		target, err := ns.lookup(s.Target)
		if err != nil {
			return err
		}
		return parent.AppendChild(target)
	case "remove":
		target, err := ns.lookup(s.Target)
		if err != nil {
			return err
		}
		target.Remove()
		return nil
	case "settext":
		target, err := ns.lookup(s.Target)
		if err != nil {
			return err
		}
		return target.SetText(s.Text)
	case "attr":
		target, err := ns.lookup(s.Target)
		if err != nil {
			return err
		}
		return target.SetAttribute(s.Name, s.Value)
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
}
