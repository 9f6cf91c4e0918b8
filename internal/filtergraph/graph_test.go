package filtergraph

import (
	"strings"
	"testing"
)

func TestChainSerialization(t *testing.T) {
	var g Graph
	g.Add(Chain{
		Filters: []Filter{
			New("color", KV("c", "black"), KV("s", "640x360"), KV("r", "30"), KV("d", Seconds(2))),
			New("format", Pos("yuv420p")),
		},
		Output: "s0",
	})
	g.Add(Chain{
		Inputs: []Pad{InputStream(0, StreamVideo)},
		Filters: []Filter{
			New("trim", KV("start", Seconds(0)), KV("duration", Seconds(3))),
			New("setpts", Pos("PTS-STARTPTS")),
			New("scale", Pos("640"), Pos("360"), KV("force_original_aspect_ratio", "decrease")),
		},
		Output: "s1",
	})
	g.Add(Chain{
		Inputs:  []Pad{Link("s0"), Link("s1")},
		Filters: []Filter{New("concat", KV("n", "2"), KV("v", "1"), KV("a", "0"))},
		Output:  "vout",
	})

	want := "color=c=black:s=640x360:r=30:d=2.000000,format=yuv420p[s0];" +
		"[0:v]trim=start=0.000000:duration=3.000000,setpts=PTS-STARTPTS,scale=640:360:force_original_aspect_ratio=decrease[s1];" +
		"[s0][s1]concat=n=2:v=1:a=0[vout]"
	if got := g.String(); got != want {
		t.Fatalf("unexpected graph:\n got %s\nwant %s", got, want)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if got := g.Unconsumed(); len(got) != 1 || got[0] != "vout" {
		t.Fatalf("expected only vout unconsumed, got %v", got)
	}
	if chain, ok := g.Producer("s1"); !ok || len(chain.Filters) != 3 {
		t.Fatalf("unexpected producer lookup: %+v %v", chain, ok)
	}
}

func TestFilterWithoutArgs(t *testing.T) {
	if got := New("reverse").String(); got != "reverse" {
		t.Fatalf("unexpected filter text %q", got)
	}
}

func TestFilterEscapesGraphSeparators(t *testing.T) {
	got := New("drawtext", KV("enable", "between(t,1.000000,2.000000)")).String()
	want := `drawtext=enable=between(t\,1.000000\,2.000000)`
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestValidateDetectsLabelViolations(t *testing.T) {
	source := func(out Label) Chain {
		return Chain{Filters: []Filter{New("anullsrc")}, Output: out}
	}
	tests := []struct {
		name   string
		chains []Chain
		want   string
	}{
		{"duplicate producer", []Chain{source("a"), source("a")}, "produced more than once"},
		{"double consume", []Chain{
			source("a"),
			{Inputs: []Pad{Link("a")}, Filters: []Filter{New("anull")}, Output: "b"},
			{Inputs: []Pad{Link("a")}, Filters: []Filter{New("anull")}, Output: "c"},
		}, "consumed more than once"},
		{"consume before produce", []Chain{
			{Inputs: []Pad{Link("a")}, Filters: []Filter{New("anull")}, Output: "b"},
			source("a"),
		}, "before it is produced"},
		{"missing output", []Chain{{Filters: []Filter{New("anullsrc")}}}, "no output label"},
		{"empty chain", []Chain{{Output: "a"}}, "no filters"},
		{"bad input", []Chain{{Inputs: []Pad{InputStream(-1, StreamVideo)}, Filters: []Filter{New("null")}, Output: "a"}}, "invalid input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Graph{Chains: tt.chains}.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLabelsAreUnique(t *testing.T) {
	labels := NewLabels()
	seen := map[Label]struct{}{}
	for i := 0; i < 50; i++ {
		for _, prefix := range []string{"s", "ov"} {
			l := labels.Next(prefix)
			if _, dup := seen[l]; dup {
				t.Fatalf("label %s issued twice", l)
			}
			seen[l] = struct{}{}
		}
	}
	if first := NewLabels().Next("s"); first != "s0" {
		t.Fatalf("expected counters to start at zero, got %s", first)
	}
	if labels.Issued() != 100 {
		t.Fatalf("expected 100 labels issued, got %d", labels.Issued())
	}
}

func TestLabelsNamedReservation(t *testing.T) {
	labels := NewLabels()
	if _, ok := labels.Named("s1"); !ok {
		t.Fatal("expected reservation to succeed")
	}
	if _, ok := labels.Named("s1"); ok {
		t.Fatal("expected duplicate reservation to fail")
	}
	if got := labels.Next("s"); got != "s0" {
		t.Fatalf("unexpected label %s", got)
	}
	if got := labels.Next("s"); got != "s2" {
		t.Fatalf("expected reserved s1 to be skipped, got %s", got)
	}
}

func TestNumberFormatting(t *testing.T) {
	if got := Seconds(1.0 / 3); got != "0.333333" {
		t.Fatalf("unexpected seconds %q", got)
	}
	if got := Ratio(2); got != "2" {
		t.Fatalf("unexpected ratio %q", got)
	}
	if got := Ratio(0.8); got != "0.8" {
		t.Fatalf("unexpected ratio %q", got)
	}
}
