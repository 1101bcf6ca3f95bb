package diag

import (
	"fmt"
	"strings"
)

// Context is a range of text in a named source. Expression sources are
// usually a single line, so positions are shown as columns.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Variables controlling the style of the culprit.
var (
	culpritBegin       = "\033[1;4m"
	culpritEnd         = "\033[m"
	culpritPlaceHolder = "^"
)

// Show returns the position of the context followed by the relevant line of
// source, with the culprit highlighted.
func (c *Context) Show() string {
	if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Sprintf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	before, culprit, after := c.Source[:c.From], c.Source[c.From:c.To], c.Source[c.To:]
	head := before[strings.LastIndexByte(before, '\n')+1:]
	line := strings.Count(before, "\n") + 1
	if i := strings.IndexByte(culprit, '\n'); i >= 0 {
		culprit, after = culprit[:i], ""
	} else if i := strings.IndexByte(after, '\n'); i >= 0 {
		after = after[:i]
	}
	if culprit == "" {
		culprit = culpritPlaceHolder
	}
	return fmt.Sprintf("%s:%d:%d: %s%s%s%s%s", c.Name, line, len(head)+1,
		head, culpritBegin, culprit, culpritEnd, after)
}
