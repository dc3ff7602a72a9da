// Package fence removes markdown code fences that models wrap around
// generated files despite being asked not to.
package fence

import "strings"

const marker = "```"

// Strip returns the body of response when the whole response is a single
// fenced block (```lang\n...\n```), and reports whether it stripped
// anything. Responses with text outside the fence are returned unchanged.
func Strip(response string) (string, bool) {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, marker) || !strings.HasSuffix(trimmed, marker) || len(trimmed) < 2*len(marker) {
		return response, false
	}

	// Opening line is ``` plus an optional info string such as "jsx".
	nl := strings.IndexByte(trimmed, '\n')
	if nl < 0 {
		return response, false
	}
	info := strings.TrimSpace(trimmed[len(marker):nl])
	if strings.Contains(info, marker) || strings.ContainsAny(info, " \t") {
		return response, false
	}

	body := strings.TrimSuffix(trimmed[nl+1:], marker)
	if strings.Contains(body, "\n"+marker) {
		// more than one fenced block
		return response, false
	}
	return strings.TrimRight(body, " \t\r\n") + "\n", true
}

// Language returns the info string of a fenced response, or "".
func Language(response string) string {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, marker) {
		return ""
	}
	nl := strings.IndexByte(trimmed, '\n')
	if nl < 0 {
		return ""
	}
	return strings.TrimSpace(trimmed[len(marker):nl])
}
