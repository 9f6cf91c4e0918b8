package filtergraph

import (
	"fmt"
	"strconv"
	"strings"
)

// Label names an intermediate link between two chains, written [label] in
// the serialized graph.
type Label string

// StreamKind selects an elementary stream of an engine input.
type StreamKind byte

const (
	StreamVideo StreamKind = 'v'
	StreamAudio StreamKind = 'a'
)

// Pad is a chain input: either a labeled link or a stream of an input file.
type Pad struct {
	Label Label
	Input int
	Kind  StreamKind
}

// Link references the output of another chain.
func Link(label Label) Pad { return Pad{Label: label} }

// InputStream references stream kind of the engine input at index.
func InputStream(index int, kind StreamKind) Pad {
	return Pad{Input: index, Kind: kind}
}

// IsInput reports whether the pad refers to an engine input stream.
func (p Pad) IsInput() bool { return p.Label == "" }

func (p Pad) String() string {
	if p.IsInput() {
		return "[" + strconv.Itoa(p.Input) + ":" + string(p.Kind) + "]"
	}
	return "[" + string(p.Label) + "]"
}

// Arg is one filter option. Positional arguments have an empty Key.
type Arg struct {
	Key   string
	Value string
}

// KV builds a keyed argument.
func KV(key, value string) Arg { return Arg{Key: key, Value: value} }

// Pos builds a positional argument.
func Pos(value string) Arg { return Arg{Value: value} }

// Filter is one primitive operation.
type Filter struct {
	Name string
	Args []Arg
}

// New builds a filter.
func New(name string, args ...Arg) Filter {
	return Filter{Name: name, Args: args}
}

// Arg returns the value of the keyed argument and whether it is present.
func (f Filter) Arg(key string) (string, bool) {
	for _, arg := range f.Args {
		if arg.Key == key {
			return arg.Value, true
		}
	}
	return "", false
}

// Chain is a linear sequence of filters reading Inputs and producing Output.
// A chain without inputs starts from a source filter.
type Chain struct {
	Inputs  []Pad
	Filters []Filter
	Output  Label
}

// Graph is an ordered list of chains.
type Graph struct {
	Chains []Chain
}

// Add appends a chain to the graph.
func (g *Graph) Add(chain Chain) {
	g.Chains = append(g.Chains, chain)
}

// Len returns the number of chains.
func (g Graph) Len() int { return len(g.Chains) }

// Producer returns the chain producing label.
func (g Graph) Producer(label Label) (Chain, bool) {
	for _, chain := range g.Chains {
		if chain.Output == label {
			return chain, true
		}
	}
	return Chain{}, false
}

// Validate checks label discipline: every chain produces a label, every label
// is produced exactly once, and every consumed label is produced by an
// earlier chain and consumed at most once.
func (g Graph) Validate() error {
	produced := make(map[Label]int, len(g.Chains))
	consumed := make(map[Label]int, len(g.Chains))
	for i, chain := range g.Chains {
		if len(chain.Filters) == 0 {
			return fmt.Errorf("chain %d has no filters", i)
		}
		for _, pad := range chain.Inputs {
			if pad.IsInput() {
				if pad.Input < 0 || (pad.Kind != StreamVideo && pad.Kind != StreamAudio) {
					return fmt.Errorf("chain %d reads invalid input %s", i, pad)
				}
				continue
			}
			if _, ok := produced[pad.Label]; !ok {
				return fmt.Errorf("chain %d consumes [%s] before it is produced", i, pad.Label)
			}
			consumed[pad.Label]++
			if consumed[pad.Label] > 1 {
				return fmt.Errorf("label [%s] consumed more than once", pad.Label)
			}
		}
		if chain.Output == "" {
			return fmt.Errorf("chain %d has no output label", i)
		}
		if _, dup := produced[chain.Output]; dup {
			return fmt.Errorf("label [%s] produced more than once", chain.Output)
		}
		produced[chain.Output] = i
	}
	return nil
}

// Unconsumed returns produced labels no chain reads, in production order.
func (g Graph) Unconsumed() []Label {
	consumed := make(map[Label]struct{})
	for _, chain := range g.Chains {
		for _, pad := range chain.Inputs {
			if !pad.IsInput() {
				consumed[pad.Label] = struct{}{}
			}
		}
	}
	var out []Label
	for _, chain := range g.Chains {
		if _, ok := consumed[chain.Output]; !ok {
			out = append(out, chain.Output)
		}
	}
	return out
}

// String serializes the graph into ffmpeg -filter_complex syntax.
func (g Graph) String() string {
	parts := make([]string, 0, len(g.Chains))
	for _, chain := range g.Chains {
		parts = append(parts, chain.String())
	}
	return strings.Join(parts, ";")
}

func (c Chain) String() string {
	var b strings.Builder
	for _, pad := range c.Inputs {
		b.WriteString(pad.String())
	}
	for i, filter := range c.Filters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(filter.String())
	}
	if c.Output != "" {
		b.WriteString("[" + string(c.Output) + "]")
	}
	return b.String()
}

func (f Filter) String() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	args := make([]string, 0, len(f.Args))
	for _, arg := range f.Args {
		value := EscapeOptionValue(arg.Value)
		if arg.Key == "" {
			args = append(args, value)
			continue
		}
		args = append(args, arg.Key+"="+value)
	}
	return f.Name + "=" + EscapeGraphArgs(strings.Join(args, ":"))
}

// Seconds formats a time value with microsecond precision.
func Seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Ratio formats a rate multiplier without trailing zeros.
func Ratio(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
