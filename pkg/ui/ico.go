package ui

import (
	"fmt"
	"html"
	"strings"

	"github.com/vango-go/domkit/pkg/component"
)

// Ico renders the svg symbol named by its name attribute.
type Ico struct {
	component.Base
}

func (i *Ico) Init() {
	name := html.EscapeString(strings.TrimSpace(i.Element().GetAttribute("name")))
	frag, err := i.Document().HTML(fmt.Sprintf(`<svg class="symbol"><use xlink:href="#%s"></use></svg>`, name))
	if err != nil {
		return
	}
	_ = i.Element().Append(frag)
}
