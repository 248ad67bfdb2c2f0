package pages

import (
	"github.com/a-h/templ"
	"github.com/drywaters/tasbih/internal/ui"
)

// TasbihPage renders the full counter page
func TasbihPage(view ui.PageView) templ.Component {
	return ui.Page("tasbih.html", view)
}

// LoginPage renders the access key form. errorType comes from the
// ?error= query parameter set by the login handler.
func LoginPage(errorType string) templ.Component {
	return ui.Page("login.html", ui.LoginView{
		Title: ui.Title,
		Error: loginErrorMessage(errorType),
	})
}

func loginErrorMessage(errorType string) string {
	switch errorType {
	case "":
		return ""
	case "missing_key":
		return "Please enter the access key."
	case "invalid_key":
		return "That access key is not valid."
	case "server_error":
		return "Something went wrong. Please try again."
	default:
		return "Invalid request."
	}
}
