// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hack

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ErrRulesNotFound is returned when a replacement rule file does not exist.
var ErrRulesNotFound = errors.New("replacement file not found")

// Rule is one batch replacement, applied to documents whose path fully
// matches Files.
type Rule struct {
	Files   *regexp.Regexp
	Find    string
	Replace string
	Literal bool

	find *regexp.Regexp
}

// NewRule compiles a rule. files must match the whole document path; find is
// a regular expression unless literal is set.
func NewRule(files, find, replace string, literal bool) (Rule, error) {
	filesRe, err := regexp.Compile(`^(?:` + files + `)$`)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid file pattern %q: %w", files, err)
	}
	r := Rule{Files: filesRe, Find: find, Replace: replace, Literal: literal}
	if !literal {
		r.find, err = regexp.Compile(find)
		if err != nil {
			return Rule{}, fmt.Errorf("invalid find pattern %q: %w", find, err)
		}
	}
	return r, nil
}

// Matches reports whether the rule applies to the document at doc.
func (r Rule) Matches(doc string) bool {
	return r.Files.MatchString(filepath.ToSlash(doc))
}

// Apply performs the replacement on text.
func (r Rule) Apply(text string) string {
	if r.Literal {
		return strings.ReplaceAll(text, r.Find, r.Replace)
	}
	return r.find.ReplaceAllString(text, r.Replace)
}

// BatchReplace applies rules in order. A document not matched by any rule
// is returned unchanged.
func BatchReplace(name string, rules []Rule) Hack {
	return Hack{
		Name: name,
		Fn: func(doc, text string) (string, error) {
			for _, r := range rules {
				if r.Matches(doc) {
					text = r.Apply(text)
				}
			}
			return text, nil
		},
	}
}

// LoadRules parses the three-line rule format: a file pattern line, a find
// pattern line and a replacement line, repeated. A trailing incomplete group
// is ignored. All rules use regular expressions. Replacement lines keep the
// escaping of earlier rule files: a backslash quotes the next character,
// $N refers to group N (taking further digits only while they name an
// existing group, so $1x is group 1 then "x") and ${name} to a named group.
// Rule.Replace holds the replacement rewritten to Go's template syntax.
func LoadRules(r io.Reader) ([]Rule, error) {
	var (
		rules []Rule
		group []string
		line  int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		group = append(group, strings.TrimSuffix(sc.Text(), "\r"))
		if len(group) < 3 {
			continue
		}
		rule, err := NewRule(group[0], group[1], group[2], false)
		if err == nil {
			rule.Replace, err = goReplacement(group[2], rule.find.NumSubexp())
		}
		if err != nil {
			return nil, fmt.Errorf("rule ending at line %d: %w", line, err)
		}
		rules = append(rules, rule)
		group = group[:0]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	return rules, nil
}

// goReplacement rewrites a backslash-escaped replacement with $N group
// references into a template for regexp.ReplaceAllString.
func goReplacement(repl string, groups int) (string, error) {
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch c {
		case '\\':
			i++
			if i == len(repl) {
				return "", fmt.Errorf("replacement %q ends with a lone backslash", repl)
			}
			if repl[i] == '$' {
				b.WriteString("$$")
			} else {
				b.WriteByte(repl[i])
			}
		case '$':
			i++
			if i == len(repl) {
				return "", fmt.Errorf("replacement %q ends with a lone $", repl)
			}
			if repl[i] == '{' {
				end := strings.IndexByte(repl[i:], '}')
				if end < 0 {
					return "", fmt.Errorf("replacement %q has an unclosed group name", repl)
				}
				b.WriteString("$" + repl[i:i+end+1])
				i += end
				continue
			}
			if repl[i] < '0' || repl[i] > '9' {
				return "", fmt.Errorf("replacement %q has an illegal group reference", repl)
			}
			ref := int(repl[i] - '0')
			for i+1 < len(repl) && repl[i+1] >= '0' && repl[i+1] <= '9' {
				next := ref*10 + int(repl[i+1]-'0')
				if next > groups {
					break
				}
				ref = next
				i++
			}
			if ref > groups {
				return "", fmt.Errorf("replacement %q refers to group %d of %d", repl, ref, groups)
			}
			fmt.Fprintf(&b, "${%d}", ref)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// ruleSpec is the YAML form of a rule.
type ruleSpec struct {
	Files   string `yaml:"files"`
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
	Literal bool   `yaml:"literal"`
}

// LoadRulesYAML parses a YAML list of rules:
//
//   - files: ".*/chapter1/.*"
//     find: "\\\\textbf"
//     replace: "\\emph"
//     literal: false
//
// Replacements use Go's template syntax ($1, ${name}) and are otherwise
// literal. An empty files pattern matches every document.
func LoadRulesYAML(r io.Reader) ([]Rule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var specs []ruleSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	rules := make([]Rule, 0, len(specs))
	for i, s := range specs {
		files := s.Files
		if files == "" {
			files = ".*"
		}
		rule, err := NewRule(files, s.Find, s.Replace, s.Literal)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadRulesFile reads rules from path, choosing the YAML format for .yaml
// and .yml files and the three-line format otherwise.
func LoadRulesFile(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRulesNotFound, path)
		}
		return nil, fmt.Errorf("opening replacement file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadRulesYAML(f)
	default:
		return LoadRules(f)
	}
}
