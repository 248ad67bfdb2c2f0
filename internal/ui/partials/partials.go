package partials

import (
	"github.com/a-h/templ"
	"github.com/drywaters/tasbih/internal/ui"
)

// App renders the #app fragment swapped in after every action
func App(view ui.PageView) templ.Component {
	return ui.Partial("app", view)
}
