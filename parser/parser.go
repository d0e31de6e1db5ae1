// Package parser reads timetabling instances from YAML or JSON files.
//
// Instances refer to times, partitions, resources and events by name. A
// minimal instance looks like:
//
//	name: school
//	times: [Mon1, Mon2, Tue1, Tue2]
//	partitions: [teachers]
//	resources:
//	  - {name: Smith, partition: teachers}
//	events:
//	  - name: Maths
//	    duration: 2
//	    resources:
//	      - {domain: [Smith], preassigned: Smith}
//	constraints:
//	  - {kind: assign_time, name: assign, required: true, weight: 1, events: [Maths]}
package parser

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/rhartert/khe-ls/khe"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Constraint kinds.
const (
	KindAssignTime            = "assign_time"
	KindAvoidClashes          = "avoid_clashes"
	KindAvoidUnavailableTimes = "avoid_unavailable_times"
	KindSplitEvents           = "split_events"
)

type rawResource struct {
	Name      string `mapstructure:"name"`
	Partition string `mapstructure:"partition"`
}

type rawEventResource struct {
	Domain      []string `mapstructure:"domain"`
	Preassigned string   `mapstructure:"preassigned"`
}

type rawEvent struct {
	Name       string             `mapstructure:"name"`
	Duration   int                `mapstructure:"duration"`
	Time       string             `mapstructure:"time"`
	TimeDomain []string           `mapstructure:"time_domain"`
	Resources  []rawEventResource `mapstructure:"resources"`
}

type rawConstraint struct {
	Kind      string   `mapstructure:"kind"`
	Name      string   `mapstructure:"name"`
	Required  bool     `mapstructure:"required"`
	Weight    int      `mapstructure:"weight"`
	Function  string   `mapstructure:"function"`
	Events    []string `mapstructure:"events"`
	Resources []string `mapstructure:"resources"`
	Times     []string `mapstructure:"times"`

	MinDuration int `mapstructure:"min_duration"`
	MaxDuration int `mapstructure:"max_duration"`
	MinAmount   int `mapstructure:"min_amount"`
	MaxAmount   int `mapstructure:"max_amount"`
}

type rawInstance struct {
	Name        string          `mapstructure:"name"`
	Times       []string        `mapstructure:"times"`
	Partitions  []string        `mapstructure:"partitions"`
	Resources   []rawResource   `mapstructure:"resources"`
	Events      []rawEvent      `mapstructure:"events"`
	Constraints []rawConstraint `mapstructure:"constraints"`
}

// ReadInstance reads the instance stored in the given file.
func ReadInstance(filepath string) (*khe.Instance, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	ins, err := ParseInstance(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath, err)
	}
	return ins, nil
}

// ParseInstance parses a YAML or JSON document and returns the finalized
// instance it describes.
func ParseInstance(data []byte) (*khe.Instance, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	var raw rawInstance
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &raw,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("invalid instance: %w", err)
	}

	ins, err := buildInstance(&raw)
	if err != nil {
		return nil, err
	}
	if err := ins.Finalize(); err != nil {
		return nil, err
	}
	return ins, nil
}

// names resolves the names of one kind of object to their indexes.
type names struct {
	kind  string
	names []string
}

func newNames(kind string, ns []string) (*names, error) {
	if dups := lo.FindDuplicates(ns); len(dups) > 0 {
		return nil, fmt.Errorf("duplicate %s name %q", kind, dups[0])
	}
	if lo.Contains(ns, "") {
		return nil, fmt.Errorf("empty %s name", kind)
	}
	return &names{kind: kind, names: ns}, nil
}

func (n *names) index(name string) (int, error) {
	i := lo.IndexOf(n.names, name)
	if i < 0 {
		return -1, fmt.Errorf("unknown %s %q", n.kind, name)
	}
	return i, nil
}

// optional returns -1 for the empty name.
func (n *names) optional(name string) (int, error) {
	if name == "" {
		return -1, nil
	}
	return n.index(name)
}

func (n *names) indexes(ns []string) ([]int, error) {
	res := make([]int, 0, len(ns))
	for _, name := range ns {
		i, err := n.index(name)
		if err != nil {
			return nil, err
		}
		res = append(res, i)
	}
	return res, nil
}

func buildInstance(raw *rawInstance) (*khe.Instance, error) {
	ins := khe.NewInstance(raw.Name)

	times, err := newNames("time", raw.Times)
	if err != nil {
		return nil, err
	}
	partitions, err := newNames("partition", raw.Partitions)
	if err != nil {
		return nil, err
	}
	resources, err := newNames("resource", lo.Map(raw.Resources, func(r rawResource, _ int) string {
		return r.Name
	}))
	if err != nil {
		return nil, err
	}
	events, err := newNames("event", lo.Map(raw.Events, func(e rawEvent, _ int) string {
		return e.Name
	}))
	if err != nil {
		return nil, err
	}

	for _, name := range raw.Times {
		ins.AddTime(name)
	}
	for _, name := range raw.Partitions {
		ins.AddPartition(name)
	}
	for _, r := range raw.Resources {
		p, err := partitions.optional(r.Partition)
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", r.Name, err)
		}
		ins.AddResource(r.Name, p)
	}
	for _, re := range raw.Events {
		if err := addEvent(ins, &re, times, resources); err != nil {
			return nil, fmt.Errorf("event %q: %w", re.Name, err)
		}
	}
	for _, rc := range raw.Constraints {
		if err := addConstraint(ins, &rc, times, resources, events); err != nil {
			return nil, fmt.Errorf("constraint %q: %w", rc.Name, err)
		}
	}
	return ins, nil
}

func addEvent(ins *khe.Instance, re *rawEvent, times, resources *names) error {
	e := ins.AddEvent(re.Name, re.Duration)
	t, err := times.optional(re.Time)
	if err != nil {
		return err
	}
	e.PreassignedTime = t
	if re.TimeDomain != nil {
		if e.TimeDomain, err = times.indexes(re.TimeDomain); err != nil {
			return err
		}
	}
	for _, rer := range re.Resources {
		domain, err := resources.indexes(rer.Domain)
		if err != nil {
			return err
		}
		pre, err := resources.optional(rer.Preassigned)
		if err != nil {
			return err
		}
		e.AddResource(domain, pre)
	}
	return nil
}

func addConstraint(ins *khe.Instance, rc *rawConstraint, times, resources, events *names) error {
	f, err := khe.ParseCostFunction(rc.Function)
	if err != nil {
		return err
	}
	base := khe.ConstraintBase{
		Name:     rc.Name,
		Required: rc.Required,
		Weight:   rc.Weight,
		Function: f,
	}

	switch rc.Kind {
	case KindAssignTime:
		es, err := events.indexes(rc.Events)
		if err != nil {
			return err
		}
		ins.AssignTime = append(ins.AssignTime, &khe.AssignTimeConstraint{
			ConstraintBase: base,
			Events:         es,
		})
	case KindSplitEvents:
		es, err := events.indexes(rc.Events)
		if err != nil {
			return err
		}
		ins.SplitEvents = append(ins.SplitEvents, &khe.SplitEventsConstraint{
			ConstraintBase: base,
			Events:         es,
			MinDuration:    rc.MinDuration,
			MaxDuration:    rc.MaxDuration,
			MinAmount:      rc.MinAmount,
			MaxAmount:      rc.MaxAmount,
		})
	case KindAvoidClashes:
		rs, err := resources.indexes(rc.Resources)
		if err != nil {
			return err
		}
		ins.AvoidClashes = append(ins.AvoidClashes, &khe.AvoidClashesConstraint{
			ConstraintBase: base,
			Resources:      rs,
		})
	case KindAvoidUnavailableTimes:
		rs, err := resources.indexes(rc.Resources)
		if err != nil {
			return err
		}
		ts, err := times.indexes(rc.Times)
		if err != nil {
			return err
		}
		ins.AvoidUnavailableTimes = append(ins.AvoidUnavailableTimes, &khe.AvoidUnavailableTimesConstraint{
			ConstraintBase: base,
			Resources:      rs,
			Times:          ts,
		})
	default:
		return fmt.Errorf("unknown kind %q", rc.Kind)
	}
	return nil
}
