package parser

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dgallion1/constellate/internal/constellation"
)

const sampleNotebook = `{
  "metadata": {"language_info": {"name": "python"}},
  "cells": [
    {"cell_type": "markdown", "source": ["# Metropolis\n", "A sampler."]},
    {"cell_type": "code", "source": ["#constellate: setup\n", "import numpy as np"], "outputs": []},
    {"cell_type": "markdown", "source": "## Setup code"},
    {"cell_type": "code", "source": ["x = 1\n", "print(x)"],
     "outputs": [{"output_type": "stream", "name": "stdout", "text": ["1\n"]}]},
    {"cell_type": "markdown", "source": "A plot"},
    {"cell_type": "code", "source": "ax.hist(x)",
     "outputs": [{"output_type": "display_data", "data": {"image/png": "iVBORw0K\nGgo=", "text/plain": "<Figure>"}}]},
    {"cell_type": "code", "source": ["#constellate: ignore\n", "secret()"], "outputs": []},
    {"cell_type": "markdown", "source": "An app"},
    {"cell_type": "code", "source": ["#constellate: panel\n", "pn.Row(w)"], "outputs": []},
    {"cell_type": "markdown", "source": "Equation"},
    {"cell_type": "markdown", "source": ["#constellate: latex\n", "$$x^2$$"]},
    {"cell_type": "markdown", "source": []},
    {"cell_type": "markdown", "source": "## Results"},
    {"cell_type": "code", "source": "fig.show()",
     "outputs": [{"output_type": "display_data", "data": {"application/vnd.plotly.v1+json": {"data": [], "layout": {}}}}]}
  ]
}`

func TestNotebookParser_Pages(t *testing.T) {
	p := &NotebookParser{}
	tree, err := p.Parse(strings.NewReader(sampleNotebook), "mh.ipynb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Title != "Metropolis" {
		t.Errorf("expected title from leading h1, got %q", tree.Title)
	}
	if tree.Cover == nil || !strings.Contains(tree.Cover.Text, "A sampler.") {
		t.Fatalf("expected cover page, got %+v", tree.Cover)
	}
	if len(tree.Setup) != 1 || !strings.Contains(tree.Setup[0], "import numpy") {
		t.Errorf("expected one setup cell, got %v", tree.Setup)
	}

	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(tree.Children))
	}
	setup := tree.Children[0]
	if setup.Title != "Setup code" || !setup.TitleInText {
		t.Errorf("unexpected section %+v", setup)
	}
	if setup.Panel == nil || setup.Panel.Kind != constellation.KindCode {
		t.Fatalf("expected code panel, got %+v", setup.Panel)
	}
	if setup.Panel.OutputText() != "1\n" || setup.Panel.Lang != "python" {
		t.Errorf("unexpected code panel output %q lang %q", setup.Panel.OutputText(), setup.Panel.Lang)
	}

	kids := setup.Children
	if len(kids) != 3 {
		t.Fatalf("expected 3 untitled pages under Setup code, got %d", len(kids))
	}
	wantKinds := []constellation.Kind{constellation.KindMatplotlib, constellation.KindPanel, constellation.KindLatex}
	for i, want := range wantKinds {
		if kids[i].Title != "" {
			t.Errorf("page %d: expected untitled, got %q", i, kids[i].Title)
		}
		if kids[i].Panel == nil || kids[i].Panel.Kind != want {
			t.Errorf("page %d: expected %s panel, got %+v", i, want, kids[i].Panel)
		}
	}
	if got := kids[0].Panel.Light; got != "data:image/png;base64,iVBORw0KGgo=" {
		t.Errorf("expected inlined png, got %q", got)
	}
	if kids[1].Panel.Panel != "pn.Row(w)" {
		t.Errorf("expected directive stripped, got %q", kids[1].Panel.Panel)
	}
	if kids[2].Panel.Latex != "$$x^2$$" {
		t.Errorf("expected latex source, got %q", kids[2].Panel.Latex)
	}

	results := tree.Children[1]
	if results.Panel == nil || results.Panel.Kind != constellation.KindPlotly || len(results.Panel.Figure) == 0 {
		t.Errorf("expected plotly panel with figure, got %+v", results.Panel)
	}
}

func TestNotebookParser_CodeWithoutMarkdown(t *testing.T) {
	input := `{"cells": [{"cell_type": "code", "source": "x = 1", "outputs": []}]}`
	p := &NotebookParser{}
	if _, err := p.Parse(strings.NewReader(input), "bad.ipynb"); err == nil {
		t.Error("expected error for a code cell with no markdown before it")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		cell nbCell
		want constellation.Kind
	}{
		{"plain directive", nbCell{Source: nbText{"#constellate: plain\n", "plt.plot()"}}, constellation.KindCode},
		{"matplotlib by source", nbCell{Source: nbText{"plt.plot(x)"}}, constellation.KindMatplotlib},
		{"panel by source", nbCell{Source: nbText{"pn.Column()"}}, constellation.KindPanel},
		{"mixed libraries", nbCell{Source: nbText{"plt.plot(); pn.Row()"}}, constellation.KindCode},
		{"widget output", nbCell{Source: nbText{"w"}, Outputs: []nbOutput{{Data: map[string]json.RawMessage{mimeWidget: json.RawMessage(`{}`)}}}}, constellation.KindPanel},
		{"vega output", nbCell{Source: nbText{"chart"}, Outputs: []nbOutput{{Data: map[string]json.RawMessage{"application/vnd.vegalite.v5+json": json.RawMessage(`{}`)}}}}, constellation.KindVega},
		{"no hints", nbCell{Source: nbText{"x = 1"}}, constellation.KindCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.cell); got != tt.want {
				t.Errorf("classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMarkdownHeading(t *testing.T) {
	tests := []struct {
		in        string
		wantLevel int
		wantTitle string
		wantOK    bool
	}{
		{"# Title", 1, "Title", true},
		{"\n### Deep ###\nbody", 3, "Deep", true},
		{"## C#", 2, "C#", true},
		{"Plain text\n# Later", 0, "", false},
		{"#hashtag", 0, "", false},
	}
	for _, tt := range tests {
		level, title, ok := markdownHeading(tt.in)
		if level != tt.wantLevel || title != tt.wantTitle || ok != tt.wantOK {
			t.Errorf("markdownHeading(%q) = %d, %q, %v", tt.in, level, title, ok)
		}
	}
}
