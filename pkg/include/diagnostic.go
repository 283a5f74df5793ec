package include

import "fmt"

// SystemMessage renders a diagnostic in place of a failed directive. The
// host renderer turns it into a visible error box.
func SystemMessage(msg, text string) string {
	if text == "" {
		return fmt.Sprintf("[[SystemMessage(%s)]]", msg)
	}
	return fmt.Sprintf("[[SystemMessage(%s, %s)]]", msg, text)
}

func siteMessage(title, origin string, line int, err error) string {
	return SystemMessage(title, fmt.Sprintf("%s:%d:%s", origin, line, err))
}
