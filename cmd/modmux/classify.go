package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"gopkg.in/yaml.v3"

	"github.com/Gaurav-Gosain/modmux/internal/config"
	"github.com/Gaurav-Gosain/modmux/internal/pattern"
)

// ruleReport is the classification of one rule string.
type ruleReport struct {
	Rule     string   `json:"rule" yaml:"rule"`
	Kinds    string   `json:"kinds" yaml:"kinds"`
	Keyboard bool     `json:"keyboard" yaml:"keyboard"`
	OCR      bool     `json:"ocr" yaml:"ocr"`
	Issues   []string `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// unescapeRule turns a literal \x01 into the segment delimiter.
func unescapeRule(s string) string {
	return strings.ReplaceAll(s, `\x01`, string(pattern.Delimiter))
}

// escapeRule is the inverse of unescapeRule, for display.
func escapeRule(s string) string {
	return strings.ReplaceAll(s, string(pattern.Delimiter), `\x01`)
}

func readRules(r io.Reader) ([]string, error) {
	var rules []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return rules, nil
}

func classifyRule(rule string, lint bool) ruleReport {
	spec := unescapeRule(rule)
	kind := pattern.Classify(spec)
	rep := ruleReport{
		Rule:     escapeRule(spec),
		Kinds:    kind.String(),
		Keyboard: pattern.HasKeyboardTrigger(spec),
		OCR:      pattern.HasOCRTrigger(spec),
	}
	if lint {
		for _, issue := range pattern.Lint(spec) {
			rep.Issues = append(rep.Issues, issue.String())
		}
	}
	return rep
}

func runClassify(w io.Writer, rules []string, format string, lint bool) error {
	if len(rules) == 0 {
		return fmt.Errorf("no rules given")
	}
	reports := make([]ruleReport, len(rules))
	for i, rule := range rules {
		reports[i] = classifyRule(rule, lint)
	}
	return writeReports(w, reports, format)
}

func writeReports(w io.Writer, reports []ruleReport, format string) error {
	switch format {
	case "table", "":
		fmt.Fprintln(w, renderReports(reports))
		return nil
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q (want table, yaml or json)", format)
}

// renderReports prints reports in a table like the keybinding listing.
func renderReports(reports []ruleReport) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)

	cellStyle := lipgloss.NewStyle().
		Padding(0, 1)

	yes := func(b bool) string {
		if b {
			return "yes"
		}
		return "-"
	}

	rows := make([][]string, 0, len(reports))
	withIssues := false
	for _, rep := range reports {
		row := []string{rep.Rule, yes(rep.Keyboard), yes(rep.OCR)}
		if len(rep.Issues) > 0 {
			withIssues = true
		}
		row = append(row, strings.Join(rep.Issues, "\n"))
		rows = append(rows, row)
	}

	headers := []string{"Rule", "Kbd", "OCR"}
	if withIssues {
		headers = append(headers, "Issues")
	} else {
		for i := range rows {
			rows[i] = rows[i][:3]
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// runPolicy evaluates the configured capture rules, and with watch set keeps
// evaluating them on every config change until interrupted.
func runPolicy(ctx context.Context, w io.Writer, watch bool) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	if err := printPolicy(w, cfg); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching config", "path", path)
	err = config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			logger.Error("config reload failed", "err", err)
			return
		}
		logger.Info("config reloaded", "path", path)
		if err := printPolicy(w, cfg); err != nil {
			logger.Error("policy output failed", "err", err)
		}
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// countSegments counts the non-blank segments of spec.
func countSegments(spec string) int {
	n := 0
	for _, seg := range pattern.Segments(spec) {
		if !seg.IsBlank() {
			n++
		}
	}
	return n
}

func printPolicy(w io.Writer, cfg *config.Config) error {
	spec := cfg.Capture.Spec()
	rep := classifyRule(spec, true)

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	fmt.Fprintln(w, title.Render("Capture policy"))
	fmt.Fprintf(w, "  Segments: %d\n", countSegments(spec))
	fmt.Fprintf(w, "  Keyboard capture: %t\n", rep.Keyboard)
	fmt.Fprintf(w, "  OCR capture: %t\n", rep.OCR)
	if !pattern.HasAnyTrigger(spec) {
		note := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
		fmt.Fprintln(w, note.Render("No capture is required by the current rules."))
	}
	for _, issue := range rep.Issues {
		fmt.Fprintf(w, "  %s %s\n", lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("warning:"), issue)
	}
	fmt.Fprintln(w)
	return nil
}
