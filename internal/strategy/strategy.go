// Package strategy maps a fired trigger category to a corrective prompt
// directive with its placeholders filled from conversation context.
package strategy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/danielpatrickdp/duologue/internal/trigger"
)

// #region context

// Context carries the values available for placeholder substitution.
type Context struct {
	Goal         string // the stated conversation goal
	Topic        string // current topic string
	InitialTopic string // topic extracted at conversation start
	LastPoint    string // key point of the most recent turn
}

func (c Context) value(key string) (string, bool) {
	switch key {
	case "goal":
		return c.Goal, c.Goal != ""
	case "topic":
		return c.Topic, c.Topic != ""
	case "initial_topic":
		return c.InitialTopic, c.InitialTopic != ""
	case "last_point":
		return c.LastPoint, c.LastPoint != ""
	}
	return "", false
}

// placeholderKeys enumerates every key a template may reference.
var placeholderKeys = map[string]bool{
	"goal":          true,
	"topic":         true,
	"initial_topic": true,
	"last_point":    true,
}

// #endregion context

// #region directive

// Directive is a filled instruction injected into the next turn's prompt.
// Consumed exactly once by the loop driver, then discarded.
type Directive struct {
	Category trigger.Category
	Text     string
}

// #endregion directive

// #region templates

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// template is one parsed template family.
type template struct {
	text string
	keys []string // placeholder keys referenced, in order of appearance
}

// defaultTemplates maps each category to its built-in template family.
var defaultTemplates = map[trigger.Category]string{
	trigger.CategoryRefocus:  "Let's maintain focus on {topic}. Briefly summarize where the discussion stands, then connect your next point directly to it.",
	trigger.CategoryClarify:  "Recent points have been hedged or ambiguous. Request specific clarification on the unclear points, starting with: {last_point}",
	trigger.CategoryGround:   "Ground your next response in concrete, verifiable detail about {topic} rather than speculation.",
	trigger.CategoryEvidence: "Support your claims about {topic} with specific evidence or examples, and state the basis for each.",
	trigger.CategoryRedirect: "The discussion has drifted from {initial_topic}. Steer your next response back toward the goal: {goal}",
	trigger.CategoryDeepen:   "The reasoning has stayed shallow. Work through this step by step, making the causal chain explicit: {last_point}",
}

// #endregion templates

// #region selector

// Selector deterministically maps a category to its single template family.
// No randomness; identical inputs always produce identical directives.
type Selector struct {
	templates map[trigger.Category]template
}

// NewSelector builds a selector from the built-in templates with optional
// per-category overrides. A template referencing an unknown placeholder key
// or an unknown category is a configuration error.
func NewSelector(overrides map[trigger.Category]string) (*Selector, error) {
	templates := make(map[trigger.Category]template, len(defaultTemplates))

	for cat, text := range defaultTemplates {
		parsed, err := parseTemplate(cat, text)
		if err != nil {
			return nil, err
		}
		templates[cat] = parsed
	}
	for cat, text := range overrides {
		if _, ok := defaultTemplates[cat]; !ok {
			return nil, fmt.Errorf("template override for unknown category %q", cat)
		}
		parsed, err := parseTemplate(cat, text)
		if err != nil {
			return nil, err
		}
		templates[cat] = parsed
	}

	return &Selector{templates: templates}, nil
}

func parseTemplate(cat trigger.Category, text string) (template, error) {
	if strings.TrimSpace(text) == "" {
		return template{}, fmt.Errorf("empty template for category %q", cat)
	}
	var keys []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		key := m[1]
		if !placeholderKeys[key] {
			return template{}, fmt.Errorf("template for %q references unknown placeholder {%s}", cat, key)
		}
		keys = append(keys, key)
	}
	return template{text: text, keys: keys}, nil
}

// #endregion selector

// #region select

// Select fills the category's template from ctx. A referenced placeholder
// with no bound value is a hard error; there is no silent blank substitution.
func (s *Selector) Select(cat trigger.Category, ctx Context) (Directive, error) {
	tmpl, ok := s.templates[cat]
	if !ok {
		return Directive{}, fmt.Errorf("no template for category %q", cat)
	}

	text := tmpl.text
	for _, key := range tmpl.keys {
		value, bound := ctx.value(key)
		if !bound {
			return Directive{}, fmt.Errorf("placeholder {%s} has no bound value for category %q", key, cat)
		}
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}

	return Directive{Category: cat, Text: text}, nil
}

// #endregion select
