package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/njchilds90/algebra"
)

var (
	colorResult = lipgloss.Color("#2CD7C7")
	colorLabel  = lipgloss.Color("#20B9B4")
	colorMuted  = lipgloss.Color("#2C4A54")
	colorError  = lipgloss.Color("#E74C3C")
)

var styles = struct {
	Input  lipgloss.Style
	Result lipgloss.Style
	Step   lipgloss.Style
	Index  lipgloss.Style
	Error  lipgloss.Style
	Box    lipgloss.Style
}{
	Input:  lipgloss.NewStyle().Foreground(colorLabel),
	Result: lipgloss.NewStyle().Bold(true).Foreground(colorResult),
	Step:   lipgloss.NewStyle(),
	Index:  lipgloss.NewStyle().Foreground(colorMuted),
	Error:  lipgloss.NewStyle().Bold(true).Foreground(colorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorLabel).
		Padding(0, 1),
}

// printer writes results as plain text, styled text on a terminal, or JSON.
type printer struct {
	w      io.Writer
	json   bool
	styled bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	p := &printer{w: w, json: asJSON}
	if f, ok := w.(*os.File); ok && !asJSON {
		p.styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return p
}

type jsonResult struct {
	Expression string   `json:"expression"`
	Operation  string   `json:"operation"`
	Result     string   `json:"result,omitempty"`
	Steps      []string `json:"steps,omitempty"`
	Error      string   `json:"error,omitempty"`
	Kind       string   `json:"kind,omitempty"`
}

func toJSON(req algebra.Request, resp *algebra.Response, err error) jsonResult {
	r := jsonResult{Expression: req.Expression, Operation: string(req.Operation)}
	if err != nil {
		r.Error = err.Error()
		r.Kind = algebra.ErrorKind(err)
		return r
	}
	r.Result = resp.Result
	r.Steps = resp.Steps
	return r
}

func (p *printer) result(req algebra.Request, resp *algebra.Response) error {
	if p.json {
		return p.encode(toJSON(req, resp, nil))
	}
	if !p.styled {
		for _, s := range resp.Steps {
			fmt.Fprintln(p.w, s)
		}
		fmt.Fprintln(p.w, resp.Result)
		return nil
	}
	for i, s := range resp.Steps {
		fmt.Fprintln(p.w, styles.Index.Render(fmt.Sprintf("%2d.", i+1)), styles.Step.Render(s))
	}
	fmt.Fprintln(p.w, styles.Box.Render(styles.Input.Render(req.Expression)+"\n"+styles.Result.Render(resp.Result)))
	return nil
}

func (p *printer) failure(req algebra.Request, err error) {
	if p.json {
		_ = p.encode(toJSON(req, nil, err))
		return
	}
	msg := fmt.Sprintf("%s error: %v", algebra.ErrorKind(err), err)
	if p.styled {
		msg = styles.Error.Render(msg)
	}
	fmt.Fprintln(p.w, msg)
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
